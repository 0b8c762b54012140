// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/api/utils"
	"github.com/canbus-network/canbus/canbus"
	"github.com/canbus-network/canbus/eventdb"
	"github.com/canbus-network/canbus/log"
	"github.com/canbus-network/canbus/metrics"
	"github.com/canbus-network/canbus/node"
)

const (
	listenerBuffer = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 7) / 10
)

var (
	logger = log.WithContext("pkg", "subscriptions")

	metricActiveWebsocketCount = metrics.LazyLoadGauge("api_active_websocket_count")

	errSlowListener = errors.New("listener fell behind")
)

// Subscriptions streams processed blocks and their staking events over websocket.
type Subscriptions struct {
	node           *node.Node
	eventDB        *eventdb.EventDB
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	done           chan struct{}
	wg             sync.WaitGroup

	mu        sync.Mutex
	listeners map[chan *node.Block]struct{}
}

// New starts dispatching the blocks of n. Backfilled events are read from
// eventDB, which may be nil to serve live events only.
func New(n *node.Node, eventDB *eventdb.EventDB, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	s := &Subscriptions{
		node:           n,
		eventDB:        eventDB,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == strings.ToLower(origin) {
						return true
					}
				}
				return false
			},
		},
		done:      make(chan struct{}),
		listeners: make(map[chan *node.Block]struct{}),
	}

	blockCh := make(chan *node.Block)
	sub := n.SubscribeBlock(blockCh)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.dispatchLoop(blockCh, sub)
	}()
	return s
}

// dispatchLoop broadcasts blocks without blocking the node. A listener whose
// buffer is full is dropped and its channel closed.
func (s *Subscriptions) dispatchLoop(blockCh <-chan *node.Block, sub event.Subscription) {
	defer sub.Unsubscribe()

	for {
		select {
		case blk := <-blockCh:
			s.mu.Lock()
			for lsn := range s.listeners {
				select {
				case lsn <- blk:
				default:
					delete(s.listeners, lsn)
					close(lsn)
				}
			}
			s.mu.Unlock()
		case <-sub.Err():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Subscriptions) subscribe() chan *node.Block {
	ch := make(chan *node.Block, listenerBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[ch] = struct{}{}
	return ch
}

func (s *Subscriptions) unsubscribe(ch chan *node.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listeners[ch]; ok {
		delete(s.listeners, ch)
		close(ch)
	}
}

func (s *Subscriptions) handleBlock(w http.ResponseWriter, req *http.Request) error {
	blocks := s.subscribe()
	defer s.unsubscribe(blocks)

	return s.serve(w, req, nil, blocks, func(blk *node.Block) ([]any, error) {
		return []any{newBlockMessage(blk)}, nil
	})
}

func (s *Subscriptions) parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{Names: query["name"]}
	if v := query.Get("who"); v != "" {
		who, err := utils.ParseAddress("who", v)
		if err != nil {
			return nil, err
		}
		filter.Who = &who
	}
	if v := query.Get("pool"); v != "" {
		id, err := utils.ParseUint("pool", v, 64)
		if err != nil {
			return nil, err
		}
		poolID := canbus.PoolID(id)
		filter.PoolID = &poolID
	}
	return filter, nil
}

func (s *Subscriptions) handleEvent(w http.ResponseWriter, req *http.Request) error {
	filter, err := s.parseEventFilter(req)
	if err != nil {
		return err
	}

	// subscribe before reading the head, so no block falls between backfill and stream
	blocks := s.subscribe()
	defer s.unsubscribe(blocks)
	head := s.node.Head()

	var backfill []any
	if v := req.URL.Query().Get("pos"); v != "" {
		pos, err := utils.ParseUint("pos", v, 32)
		if err != nil {
			return err
		}
		if pos <= uint64(head) {
			if s.eventDB == nil {
				return utils.Forbidden(errors.New("pos: event index is disabled"))
			}
			if uint64(head)-pos > uint64(s.backtraceLimit) {
				return utils.Forbidden(fmt.Errorf("pos: backtrace limit of %d blocks exceeded", s.backtraceLimit))
			}
			events, err := s.eventDB.Filter(req.Context(), filter.dbFilter(uint32(pos), head))
			if err != nil {
				return err
			}
			for _, ev := range events {
				backfill = append(backfill, newEventMessage(ev))
			}
		}
	}

	return s.serve(w, req, backfill, blocks, func(blk *node.Block) ([]any, error) {
		if blk.Number <= head {
			return nil, nil
		}
		var msgs []any
		for i, ev := range blk.Events() {
			e, err := eventdb.NewEvent(blk.Number, uint32(i), ev)
			if err != nil {
				return nil, err
			}
			if filter.Match(e) {
				msgs = append(msgs, newEventMessage(e))
			}
		}
		return msgs, nil
	})
}

// serve upgrades the request, writes the backfilled messages and then the
// messages converted from each block until either side goes away.
func (s *Subscriptions) serve(
	w http.ResponseWriter,
	req *http.Request,
	backfill []any,
	blocks <-chan *node.Block,
	convert func(*node.Block) ([]any, error),
) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has replied already
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	metricActiveWebsocketCount().Add(1)
	defer metricActiveWebsocketCount().Add(-1)

	err = s.pipe(conn, backfill, blocks, convert)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		logger.Debug("websocket closed", "uri", req.URL.String(), "err", err)
		msg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	}
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = conn.Close()
	return nil
}

func (s *Subscriptions) pipe(
	conn *websocket.Conn,
	backfill []any,
	blocks <-chan *node.Block,
	convert func(*node.Block) ([]any, error),
) error {
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	// the client is not expected to send anything, reading only serves control frames
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msgs []any) error {
		for _, msg := range msgs {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(backfill); err != nil {
		return err
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case blk, ok := <-blocks:
			if !ok {
				return errSlowListener
			}
			msgs, err := convert(blk)
			if err != nil {
				return err
			}
			if err := write(msgs); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			return nil
		}
	}
}

// Close stops dispatching and waits for the open connections to close.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/block").
		Methods(http.MethodGet).
		Name("WS /subscriptions/block").
		HandlerFunc(utils.WrapHandlerFunc(s.handleBlock))
	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleEvent))
}
