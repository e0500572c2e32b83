// Package docs provides generated OpenAPI documentation.
//
// docparse API
//
//	@title			docparse API
//	@version		1.0
//	@description	Identity document workflow: select front and back images, parse them through the OCR service, then save or reset the extracted record.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/docparse
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/docparse/serve.go -o ./swagger --outputTypes go --parseInternal
