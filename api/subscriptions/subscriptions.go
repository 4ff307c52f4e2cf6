// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/block"
	"github.com/meterio/meter-auction/chain"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 2 * pingPeriod
	writeWait  = 10 * time.Second
)

var log = slog.Default().With("pkg", "subscriptions")

type Subscriptions struct {
	backtraceLimit uint32
	chain          *chain.Chain
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup
}

type msgReader interface {
	Read() (msgs []interface{}, hasMore bool, err error)
}

func New(chain *chain.Chain, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		backtraceLimit: backtraceLimit,
		chain:          chain,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin || allowedOrigin == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) newBlockReader(req *http.Request) (msgReader, error) {
	position, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return nil, err
	}
	return newBlockReader(s.chain, position), nil
}

func parseAddress(s string) (*meter.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseTopic(t string) (*meter.Bytes32, error) {
	if t == "" {
		return nil, nil
	}
	topic, err := meter.ParseBytes32(t)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Subscriptions) newEventReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	position, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	filter := &EventFilter{Name: query.Get("name")}
	if filter.Address, err = parseAddress(query.Get("addr")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	topics := []**meter.Bytes32{&filter.Topic0, &filter.Topic1, &filter.Topic2, &filter.Topic3, &filter.Topic4}
	for i, t := range topics {
		key := "t" + strconv.Itoa(i)
		if *t, err = parseTopic(query.Get(key)); err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, key))
		}
	}
	return newEventReader(s.chain, position, filter), nil
}

func (s *Subscriptions) newTransferReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	position, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	filter := &TransferFilter{}
	if filter.TxOrigin, err = parseAddress(query.Get("txOrigin")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "txOrigin"))
	}
	if filter.Sender, err = parseAddress(query.Get("sender")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "sender"))
	}
	if filter.Recipient, err = parseAddress(query.Get("recipient")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "recipient"))
	}
	if token := query.Get("token"); token != "" {
		n, err := strconv.ParseUint(token, 0, 32)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "token"))
		}
		id := uint32(n)
		filter.Token = &id
	}
	return newTransferReader(s.chain, position, filter), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	var (
		reader msgReader
		err    error
	)
	switch mux.Vars(req)["subject"] {
	case "block":
		reader, err = s.newBlockReader(req)
	case "event":
		reader, err = s.newEventReader(req)
	case "transfer":
		reader, err = s.newTransferReader(req)
	default:
		return utils.HTTPError(errors.New("not found"), http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	id := uuid.New().String()
	conn, err := s.upgrader.Upgrade(w, req, http.Header{"X-Subscription-Id": []string{id}})
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		log.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	log.Debug("subscription opened", "id", id, "subject", mux.Vars(req)["subject"])
	err = s.pipe(conn, reader)
	if closeMsg, ok := closeMessage(err); ok {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, closeMsg)
	}
	log.Debug("subscription closed", "id", id, "err", err)
	return nil
}

func closeMessage(err error) ([]byte, bool) {
	if err == nil {
		return websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), true
	}
	if _, ok := err.(*websocket.CloseError); ok {
		return nil, false
	}
	return websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()), true
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader) error {
	closed := make(chan error, 1)
	// read goroutine to detect close and receive pongs
	go func() {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closed <- err
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		// create the waiter before reading so no block is missed
		ticker := s.chain.NewTicker()
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.done:
				return nil
			case err := <-closed:
				return err
			default:
			}
			continue
		}
		select {
		case <-s.done:
			return nil
		case err := <-closed:
			return err
		case <-ticker.C():
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (s *Subscriptions) parsePosition(posStr string) (meter.Bytes32, error) {
	best := s.chain.BestBlock()
	if posStr == "" {
		return best.ID(), nil
	}
	pos, err := meter.ParseBytes32(posStr)
	if err != nil {
		return meter.Bytes32{}, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if _, err := s.chain.GetBlockHeader(pos); err != nil {
		if s.chain.IsNotFound(err) {
			return meter.Bytes32{}, utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		return meter.Bytes32{}, err
	}
	if best.Number()-block.Number(pos) > s.backtraceLimit {
		return meter.Bytes32{}, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

// Close ends all open subscriptions and waits for them.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").Methods("Get").HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
