package setup

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hvctl-io/hvctl/internal/board"
	"github.com/hvctl-io/hvctl/pkg/protocol"
)

// SQLiteStore implements Store using SQLite. The channels table carries one
// nullable REAL column per board parameter.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// Pass InMemory for a throwaway state database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("setup store: open: %w", err)
	}
	// An in-memory database exists per connection; pin the pool to one.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// InMemory is the path of a non-persistent state database.
const InMemory = ":memory:"

func (s *SQLiteStore) migrate() error {
	var cols strings.Builder
	for _, name := range board.ParameterNames {
		fmt.Fprintf(&cols, "\t\t\t%q REAL,\n", name)
	}
	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS boards (
			address TEXT PRIMARY KEY,
			conet   INTEGER NOT NULL,
			link    INTEGER NOT NULL,
			handle  INTEGER
		);

		CREATE TABLE IF NOT EXISTS channels (
			board_address TEXT NOT NULL REFERENCES boards(address) ON DELETE CASCADE,
			channel       INTEGER NOT NULL,
			alias         TEXT NOT NULL DEFAULT '',
			layer         INTEGER NOT NULL DEFAULT -1,
			last_update   TEXT,
%s			PRIMARY KEY (board_address, channel)
		);

		CREATE INDEX IF NOT EXISTS idx_channels_layer ON channels(layer);
	`, cols.String()))
	if err != nil {
		return fmt.Errorf("setup store: migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM channels`); err != nil {
		return fmt.Errorf("setup store: reset: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM boards`); err != nil {
		return fmt.Errorf("setup store: reset: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddBoard(b BoardState) error {
	_, err := s.db.Exec(`
		INSERT INTO boards (address, conet, link, handle) VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET conet=excluded.conet, link=excluded.link
	`, b.Address, b.Conet, b.Link, b.Handle)
	if err != nil {
		return fmt.Errorf("setup store: add board: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SetBoardHandle(address string, handle int) error {
	res, err := s.db.Exec(`UPDATE boards SET handle = ? WHERE address = ?`, handle, address)
	if err != nil {
		return fmt.Errorf("setup store: set handle: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("setup store: board %q not found", address)
	}
	return nil
}

func (s *SQLiteStore) Boards() ([]BoardState, error) {
	rows, err := s.db.Query(`SELECT address, conet, link, handle FROM boards ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("setup store: boards: %w", err)
	}
	defer rows.Close()

	var boards []BoardState
	for rows.Next() {
		var b BoardState
		var handle sql.NullInt64
		if err := rows.Scan(&b.Address, &b.Conet, &b.Link, &handle); err != nil {
			return nil, fmt.Errorf("setup store: boards: %w", err)
		}
		if handle.Valid {
			h := int(handle.Int64)
			b.Handle = &h
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (s *SQLiteStore) AddChannel(ch ChannelState) error {
	_, err := s.db.Exec(`
		INSERT INTO channels (board_address, channel, alias, layer) VALUES (?, ?, ?, ?)
		ON CONFLICT(board_address, channel) DO UPDATE SET alias=excluded.alias, layer=excluded.layer
	`, ch.ID.Board, ch.ID.Channel, ch.Alias, ch.Layer)
	if err != nil {
		return fmt.Errorf("setup store: add channel: %w", err)
	}
	return nil
}

// channelColumns is the SELECT column list shared by Channels and Channel.
func channelColumns() string {
	cols := []string{"b.address", "b.conet", "b.link", "c.channel", "c.alias", "c.layer", "c.last_update"}
	for _, name := range board.ParameterNames {
		cols = append(cols, fmt.Sprintf("c.%q", name))
	}
	return strings.Join(cols, ", ")
}

func scanChannel(rows interface{ Scan(...any) error }) (ChannelState, error) {
	ch := ChannelState{Params: make(map[string]*float64, len(board.ParameterNames))}
	var lastUpdate sql.NullString
	dest := []any{&ch.ID.Board, &ch.ID.Conet, &ch.ID.Link, &ch.ID.Channel, &ch.Alias, &ch.Layer, &lastUpdate}
	params := make([]sql.NullFloat64, len(board.ParameterNames))
	for i := range params {
		dest = append(dest, &params[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return ChannelState{}, err
	}
	if lastUpdate.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastUpdate.String)
		if err != nil {
			return ChannelState{}, fmt.Errorf("bad last_update %q: %w", lastUpdate.String, err)
		}
		ch.LastUpdate = &t
	}
	for i, name := range board.ParameterNames {
		if params[i].Valid {
			v := params[i].Float64
			ch.Params[name] = &v
		} else {
			ch.Params[name] = nil
		}
	}
	return ch, nil
}

func (s *SQLiteStore) Channels(layer *int) ([]ChannelState, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM channels c JOIN boards b ON b.address = c.board_address
	`, channelColumns())
	var args []any
	if layer != nil {
		query += ` WHERE c.layer = ?`
		args = append(args, *layer)
	}
	query += ` ORDER BY b.address, c.channel`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("setup store: channels: %w", err)
	}
	defer rows.Close()

	var channels []ChannelState
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("setup store: channels: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (s *SQLiteStore) Channel(id protocol.ChannelID) (*ChannelState, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM channels c JOIN boards b ON b.address = c.board_address
		WHERE c.board_address = ? AND c.channel = ?
	`, channelColumns())
	row := s.db.QueryRow(query, id.Board, id.Channel)
	ch, err := scanChannel(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("setup store: channel %s not found", id)
		}
		return nil, fmt.Errorf("setup store: channel: %w", err)
	}
	return &ch, nil
}

func (s *SQLiteStore) UpdateParams(id protocol.ChannelID, params map[string]float64, at time.Time) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sets strings.Builder
	sets.WriteString("last_update = ?")
	args := []any{at.Format(time.RFC3339Nano)}
	for _, name := range names {
		fmt.Fprintf(&sets, ", %q = ?", name)
		args = append(args, params[name])
	}
	args = append(args, id.Board, id.Channel)

	res, err := s.db.Exec(fmt.Sprintf(
		`UPDATE channels SET %s WHERE board_address = ? AND channel = ?`, sets.String(),
	), args...)
	if err != nil {
		return fmt.Errorf("setup store: update params: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("setup store: channel %s not found", id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
