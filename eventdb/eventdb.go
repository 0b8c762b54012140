// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes staking events in sqlite for queries by block range, name, account and pool.
package eventdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/canbus-network/canbus/builtin/stablestaking"
	"github.com/canbus-network/canbus/canbus"
)

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// in-memory databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// NewestBlockNumber returns the highest block with indexed events, zero for an empty db.
func (db *EventDB) NewestBlockNumber() (uint32, error) {
	var n sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(blockNumber) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return uint32(n.Int64), nil
}

// Prepare starts the batch of events of one block.
func (db *EventDB) Prepare(blockNumber uint32) *BlockBatch {
	return &BlockBatch{db: db, blockNumber: blockNumber}
}

// Filter returns the events matching filter, ordered by block and index.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		filter = &Filter{}
	}
	var args []any
	stmt := "SELECT blockNumber, eventIndex, name, who, poolID, data FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND blockNumber >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND blockNumber <= ? "
		}
	}
	if len(filter.Names) > 0 {
		stmt += " AND name IN (?" + strings.Repeat(",?", len(filter.Names)-1) + ")"
		for _, name := range filter.Names {
			args = append(args, name)
		}
	}
	if filter.Who != nil {
		args = append(args, filter.Who.Bytes())
		stmt += " AND who = ? "
	}
	if filter.PoolID != nil {
		args = append(args, int64(*filter.PoolID))
		stmt += " AND poolID = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC "
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			ev     Event
			who    []byte
			poolID sql.NullInt64
			data   []byte
		)
		if err := rows.Scan(&ev.BlockNumber, &ev.Index, &ev.Name, &who, &poolID, &data); err != nil {
			return nil, err
		}
		if len(who) > 0 {
			addr := canbus.BytesToAddress(who)
			ev.Who = &addr
		}
		if poolID.Valid {
			id := canbus.PoolID(poolID.Int64)
			ev.PoolID = &id
		}
		ev.Data = data
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// BlockBatch collects the events of one block and writes them in a single transaction.
type BlockBatch struct {
	db          *EventDB
	blockNumber uint32
	events      []*Event
}

// NewEvent converts the index-th staking event of a block to its indexed form.
func NewEvent(blockNumber, index uint32, ev stablestaking.Event) (*Event, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrap(err, "encode event")
	}
	who, poolID := stablestaking.Subject(ev)
	return &Event{
		BlockNumber: blockNumber,
		Index:       index,
		Name:        ev.EventName(),
		Who:         who,
		PoolID:      poolID,
		Data:        data,
	}, nil
}

// Add appends a staking event to the batch.
func (b *BlockBatch) Add(ev stablestaking.Event) error {
	e, err := NewEvent(b.blockNumber, uint32(len(b.events)), ev)
	if err != nil {
		return err
	}
	b.events = append(b.events, e)
	return nil
}

func (b *BlockBatch) Len() int {
	return len(b.events)
}

// Commit writes the batch, replacing events previously indexed for the block.
func (b *BlockBatch) Commit() (err error) {
	// prepare before the transaction takes the only connection
	del, err := b.db.stmtCache.Prepare("DELETE FROM event WHERE blockNumber = ?")
	if err != nil {
		return err
	}
	ins, err := b.db.stmtCache.Prepare("INSERT INTO event(blockNumber, eventIndex, name, who, poolID, data) VALUES(?,?,?,?,?,?)")
	if err != nil {
		return err
	}

	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Stmt(del).Exec(b.blockNumber); err != nil {
		return err
	}
	stmt := tx.Stmt(ins)
	for _, ev := range b.events {
		var (
			who    any
			poolID any
		)
		if ev.Who != nil {
			who = ev.Who.Bytes()
		}
		if ev.PoolID != nil {
			poolID = int64(*ev.PoolID)
		}
		if _, err = stmt.Exec(ev.BlockNumber, ev.Index, ev.Name, who, poolID, []byte(ev.Data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
