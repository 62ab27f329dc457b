package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dividend_backend/internal/feature/history/domain"
	"dividend_backend/internal/feature/history/usecase"
	"dividend_backend/internal/feature/projection/domain/entity"
	"dividend_backend/internal/shared/calendar"
	"dividend_backend/internal/shared/fsutil"
)

const (
	snapshotPrefix = "snapshot_"
	snapshotExt    = ".json"
)

// snapshotFileRepository は 1 日 1 ファイル（snapshot_YYYY-MM-DD.json）でスナップショットを保存します。
type snapshotFileRepository struct {
	dir string
}

var _ usecase.SnapshotRepository = (*snapshotFileRepository)(nil)

// NewSnapshotFileRepository は dir 配下にスナップショットを保存するリポジトリを生成します。
// ディレクトリは最初の保存時に作成されます。
func NewSnapshotFileRepository(dir string) *snapshotFileRepository {
	return &snapshotFileRepository{dir: dir}
}

func (r *snapshotFileRepository) path(d calendar.Date) string {
	return filepath.Join(r.dir, snapshotPrefix+d.String()+snapshotExt)
}

// Save はスナップショットを一時ファイルに書き出してから rename で置き換えます。
func (r *snapshotFileRepository) Save(ctx context.Context, s entity.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Date.IsZero() {
		return fmt.Errorf("%w: snapshot has no date", domain.ErrPersistence)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistence, s.Date, err)
	}
	if err := fsutil.WriteFileAtomic(r.path(s.Date), b, 0o644); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// Load は指定日のスナップショットを読み込みます。
func (r *snapshotFileRepository) Load(ctx context.Context, date calendar.Date) (entity.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return entity.Snapshot{}, err
	}
	b, err := os.ReadFile(r.path(date))
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("read snapshot %s: %w", date, err)
	}

	var s entity.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return entity.Snapshot{}, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRecord, date, err)
	}
	if s.Date != date {
		return entity.Snapshot{}, fmt.Errorf("%w: %s: file holds date %q", domain.ErrMalformedRecord, date, s.Date)
	}
	return s, nil
}

// Dates はディレクトリ内のスナップショットファイル名から日付を昇順で返します。
// 命名規則に合わないファイル（書き込み途中の一時ファイルを含む）は無視します。
func (r *snapshotFileRepository) Dates(ctx context.Context) ([]calendar.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []calendar.Date{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	dates := make([]calendar.Date, 0, len(entries))
	for _, e := range entries {
		if d, ok := dateFromName(e); ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func dateFromName(e fs.DirEntry) (calendar.Date, bool) {
	name := e.Name()
	if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
		return calendar.Date{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExt)
	if len(raw) != len(calendar.Layout) {
		return calendar.Date{}, false
	}
	d, err := calendar.Parse(raw)
	if err != nil {
		return calendar.Date{}, false
	}
	return d, true
}
