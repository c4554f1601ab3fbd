package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/richard-senior/cardstats/internal/logger"
	"github.com/richard-senior/cardstats/pkg/util"
	_ "modernc.org/sqlite"
)

// SchemaVersion changes whenever MatchRow's persisted columns change
const SchemaVersion = 1

const datasetExt = ".db"

var (
	// ErrSchemaMismatch is returned when a dataset was written by a different column layout
	ErrSchemaMismatch = errors.New("dataset schema version mismatch")
	// ErrNameCollision is returned when two display names normalise to the same storage key
	ErrNameCollision = errors.New("team name collides with an existing dataset")
)

// TeamDataset is the persisted unit: every enriched match row of one team in one league
type TeamDataset struct {
	Team          string
	League        string
	Rows          []*MatchRow
	SchemaVersion int
	RunID         string
	SavedAt       time.Time
}

// LastDate is the high-water mark of the dataset, "" when it holds no rows
func (d *TeamDataset) LastDate() string {
	last := ""
	for _, r := range d.Rows {
		if r.Date > last {
			last = r.Date
		}
	}
	return last
}

// datasetMeta is the single row describing who wrote a dataset file
type datasetMeta struct {
	Key           string `column:"key" dbtype:"TEXT" primary:"true"`
	Team          string `column:"team" dbtype:"TEXT NOT NULL"`
	League        string `column:"league" dbtype:"TEXT NOT NULL"`
	SchemaVersion int    `column:"schema_version" dbtype:"INTEGER NOT NULL"`
	RunID         string `column:"run_id" dbtype:"TEXT"`
	SavedAt       string `column:"saved_at" dbtype:"TEXT"`
}

func (m *datasetMeta) GetTableName() string {
	return "dataset_meta"
}

func (m *datasetMeta) BeforeSave() error {
	m.Key = "dataset"
	return nil
}

// Store keeps one sqlite file per team under <root>/<league>/
type Store struct {
	root   string
	league string
}

// NewStore returns a Store for one league namespace, nothing is created until Save
func NewStore(root, league string) *Store {
	return &Store{root: root, league: league}
}

// Dir is the league namespace directory
func (s *Store) Dir() string {
	return filepath.Join(s.root, s.league)
}

// Path is the dataset file for a team display name
func (s *Store) Path(team string) string {
	return filepath.Join(s.Dir(), util.NormalizeIdentifier(team)+datasetExt)
}

func openDataset(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping dataset %s: %w", path, err)
	}
	return db, nil
}

// Load returns the persisted dataset of team.
// A team that has never been saved gives (nil, false, nil).
func (s *Store) Load(ctx context.Context, team string) (*TeamDataset, bool, error) {
	path := s.Path(team)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No dataset yet for", team, path)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to stat dataset %s: %w", path, err)
	}
	ds, err := readDataset(ctx, path)
	if err != nil {
		return nil, false, err
	}
	return ds, true, nil
}

func readDataset(ctx context.Context, path string) (*TeamDataset, error) {
	db, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if meta.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %d, expected %d", ErrSchemaMismatch, path, meta.SchemaVersion, SchemaVersion)
	}

	rows, err := FindAll[MatchRow](ctx, db, "date")
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}
	savedAt, _ := time.Parse(time.RFC3339, meta.SavedAt)
	return &TeamDataset{
		Team:          meta.Team,
		League:        meta.League,
		Rows:          rows,
		SchemaVersion: meta.SchemaVersion,
		RunID:         meta.RunID,
		SavedAt:       savedAt,
	}, nil
}

func readMeta(ctx context.Context, db *sql.DB) (*datasetMeta, error) {
	var name string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", (&datasetMeta{}).GetTableName()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no dataset metadata", ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up dataset metadata: %w", err)
	}
	metas, err := FindAll[datasetMeta](ctx, db, "")
	if err != nil {
		return nil, err
	}
	if len(metas) != 1 {
		return nil, fmt.Errorf("%w: expected one metadata row, found %d", ErrSchemaMismatch, len(metas))
	}
	return metas[0], nil
}

// Save replaces the whole dataset of ds.Team.
// The new file is built beside the old one and renamed over it.
func (s *Store) Save(ctx context.Context, ds *TeamDataset) error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("failed to create league directory: %w", err)
	}

	path := s.Path(ds.Team)
	if err := s.checkCollision(ctx, path, ds.Team); err != nil {
		return err
	}

	tmp := path + ".tmp"
	os.Remove(tmp)
	if err := writeDataset(ctx, tmp, ds, s.league); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace dataset %s: %w", path, err)
	}
	logger.Info("Saved dataset", ds.Team, len(ds.Rows), "rows to", path)
	return nil
}

// checkCollision refuses to overwrite a file that belongs to another display name
func (s *Store) checkCollision(ctx context.Context, path, team string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	db, err := openDataset(path)
	if err != nil {
		return err
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		// unreadable metadata is rewritten, only a named owner can collide
		logger.Warn("Overwriting dataset with unreadable metadata", path, err)
		return nil
	}
	if meta.Team != team {
		return fmt.Errorf("%w: %q and %q both map to %s", ErrNameCollision, meta.Team, team, path)
	}
	return nil
}

func writeDataset(ctx context.Context, path string, ds *TeamDataset, league string) error {
	db, err := openDataset(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := CreateTable(ctx, tx, &datasetMeta{}); err != nil {
		return err
	}
	if err := CreateTable(ctx, tx, &MatchRow{}); err != nil {
		return err
	}

	meta := &datasetMeta{
		Team:          ds.Team,
		League:        league,
		SchemaVersion: SchemaVersion,
		RunID:         ds.RunID,
		SavedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := Insert(ctx, tx, meta); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := Insert(ctx, tx, row); err != nil {
			return fmt.Errorf("failed to save match %s: %w", row.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Teams lists the display names of every dataset in the league, sorted
func (s *Store) Teams(ctx context.Context) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir(), "*"+datasetExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	var teams []string
	for _, p := range paths {
		db, err := openDataset(p)
		if err != nil {
			return nil, err
		}
		meta, err := readMeta(ctx, db)
		db.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		teams = append(teams, meta.Team)
	}
	sort.Strings(teams)
	return teams, nil
}

// LoadAll concatenates the rows of every dataset in the league
func (s *Store) LoadAll(ctx context.Context) ([]*MatchRow, error) {
	teams, err := s.Teams(ctx)
	if err != nil {
		return nil, err
	}
	var all []*MatchRow
	for _, team := range teams {
		ds, ok, err := s.Load(ctx, team)
		if err != nil {
			return nil, err
		}
		if ok {
			all = append(all, ds.Rows...)
		}
	}
	return all, nil
}
