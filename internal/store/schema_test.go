package store

import "testing"

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "complete record",
			data: `{"name":"Jane Doe","dateOfBirth":"1990-01-01","gender":"F","address":"1 Main St","pincode":"00000"}`,
		},
		{
			name: "empty strings are allowed",
			data: `{"name":"","dateOfBirth":"","gender":"","address":"","pincode":""}`,
		},
		{
			name:    "not json",
			data:    `{name: Jane`,
			wantErr: true,
		},
		{
			name:    "array",
			data:    `["Jane Doe"]`,
			wantErr: true,
		},
		{
			name:    "missing field",
			data:    `{"name":"Jane Doe","dateOfBirth":"1990-01-01","gender":"F","address":"1 Main St"}`,
			wantErr: true,
		},
		{
			name:    "numeric pincode",
			data:    `{"name":"Jane Doe","dateOfBirth":"1990-01-01","gender":"F","address":"1 Main St","pincode":12345}`,
			wantErr: true,
		},
		{
			name:    "null",
			data:    `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
