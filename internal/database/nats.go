package database

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// ConnectNATS dials the event broker. An empty URL returns a nil connection,
// which the event publisher treats as a disabled broker.
func ConnectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := nats.Connect(url, nats.Name("umadex-debate-api"))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to nats: %w", err)
	}

	return conn, nil
}
