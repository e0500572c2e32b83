package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	// CleanupLabel marks containers created by tests.
	CleanupLabel = "docparse-test"

	// RedisAddrEnv points integration tests at an existing redis server
	// instead of a throwaway container.
	RedisAddrEnv = "DOCPARSE_TEST_REDIS_ADDR"

	// RedisImage is the image used for throwaway redis containers.
	RedisImage = "redis:7-alpine"
)

// TestingT is the subset of testing.T used for Docker setup.
type TestingT interface {
	Name() string
	Cleanup(func())
	Logf(format string, args ...any)
	Skipf(format string, args ...any)
	Fatalf(format string, args ...any)
	Helper()
}

// DockerClient returns a Docker client and removes this test's labelled
// containers when the test ends. The test is skipped without Docker.
func DockerClient(t TestingT) *client.Client {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		t.Skipf("docker is not running: %v", err)
		return nil
	}

	t.Cleanup(func() {
		removeTestContainers(t, cli)
		_ = cli.Close()
	})

	return cli
}

// RedisAddr returns a redis address for integration tests: RedisAddrEnv when
// set, otherwise a throwaway container bound to a free localhost port.
func RedisAddr(t TestingT) string {
	t.Helper()
	if addr := os.Getenv(RedisAddrEnv); addr != "" {
		return addr
	}

	cli := DockerClient(t)
	if cli == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := cli.ImageInspect(ctx, RedisImage); err != nil {
		reader, err := cli.ImagePull(ctx, RedisImage, image.PullOptions{})
		if err != nil {
			t.Skipf("cannot pull %s: %v", RedisImage, err)
			return ""
		}
		_, _ = io.Copy(io.Discard, reader)
		reader.Close()
	}

	port, err := FindFreePort()
	if err != nil {
		t.Fatalf("FindFreePort() error = %v", err)
	}

	const redisPort = nat.Port("6379/tcp")
	resp, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:        RedisImage,
			Labels:       ContainerLabels(t),
			ExposedPorts: nat.PortSet{redisPort: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				redisPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: port}},
			},
		},
		nil, nil, UniqueContainerName(t, "redis"))
	if err != nil {
		t.Fatalf("failed to create redis container: %v", err)
	}
	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	addr := net.JoinHostPort("127.0.0.1", port)
	deadline := time.Now().Add(30 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("redis container not listening on %s: %v", addr, err)
		}
		time.Sleep(200 * time.Millisecond)
	}
	t.Logf("started redis container %s at %s", resp.ID[:12], addr)
	return addr
}

// UniqueContainerName generates a unique container name for a test.
// Format: docparse-test-<prefix>-<testname>-<random>
func UniqueContainerName(t TestingT, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s-%s-%s-%s", CleanupLabel, prefix, sanitizeName(t.Name()), randString(4))
}

// ContainerLabels returns the labels that tie a container to this test.
func ContainerLabels(t TestingT) map[string]string {
	return map[string]string{
		CleanupLabel: t.Name(),
	}
}

// removeTestContainers force-removes every container labelled for this test.
func removeTestContainers(t TestingT, cli *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filterArgs := filters.NewArgs()
	filterArgs.Add("label", fmt.Sprintf("%s=%s", CleanupLabel, t.Name()))

	containers, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		t.Logf("Failed to list containers for cleanup: %v", err)
		return
	}

	for _, c := range containers {
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{
			Force:         true,
			RemoveVolumes: true,
		}); err != nil {
			t.Logf("Failed to remove container %s: %v", strings.Join(c.Names, ","), err)
		}
	}
}

func randString(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// sanitizeName keeps a test name usable inside a container name.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '/' || r == '_' || r == '-' || r == ' ':
			b.WriteByte('-')
		}
		if b.Len() >= 30 {
			break
		}
	}
	return b.String()
}
