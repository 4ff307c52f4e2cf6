// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventbus

import (
	"context"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSPublisher publishes to subjects "<prefix>.<contract address>.<event name>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("auctiond"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}
	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

// NATSSubject returns the subject of msg.
func NATSSubject(prefix string, msg *Message) string {
	return strings.Join([]string{prefix, msg.Address.String(), msg.Name}, ".")
}

func (p *NATSPublisher) Publish(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := msg.encode()
	if err != nil {
		return err
	}
	return p.conn.Publish(NATSSubject(p.prefix, msg), data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	err := p.conn.Flush()
	p.conn.Close()
	return err
}
