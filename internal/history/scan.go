package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const runColumns = "id, kind, status, dry_run, started_at, finished_at, processed, added, updated, known, not_found, unresolved, skipped, error_message"

const checkColumns = "run_id, entry_id, title, outcome, services, rent_buy, matched_title, matched_year, error_message, checked_at"

type scanner interface{ Scan(dest ...any) error }

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		dryRun      int64
		startedRaw  string
		finishedRaw sql.NullString
		errorMsg    sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Status,
		&dryRun,
		&startedRaw,
		&finishedRaw,
		&run.Counts.Processed,
		&run.Counts.Added,
		&run.Counts.Updated,
		&run.Counts.Known,
		&run.Counts.NotFound,
		&run.Counts.Unresolved,
		&run.Counts.Skipped,
		&errorMsg,
	); err != nil {
		return Run{}, err
	}
	run.DryRun = dryRun != 0
	run.Error = errorMsg.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func scanCheck(row scanner) (Check, error) {
	var (
		check        Check
		servicesRaw  sql.NullString
		rentBuyRaw   sql.NullString
		matchedTitle sql.NullString
		matchedYear  sql.NullInt64
		errorMsg     sql.NullString
		checkedRaw   string
	)
	if err := row.Scan(
		&check.RunID,
		&check.EntryID,
		&check.Title,
		&check.Outcome,
		&servicesRaw,
		&rentBuyRaw,
		&matchedTitle,
		&matchedYear,
		&errorMsg,
		&checkedRaw,
	); err != nil {
		return Check{}, err
	}
	check.Services = splitList(servicesRaw.String)
	check.RentBuy = splitList(rentBuyRaw.String)
	check.MatchedTitle = matchedTitle.String
	check.MatchedYear = int(matchedYear.Int64)
	check.Error = errorMsg.String
	if checked, err := parseTimeString(checkedRaw); err == nil {
		check.CheckedAt = checked
	}
	return check, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// joinList uses a unit separator so vendor names may contain commas.
func joinList(values []string) string {
	return strings.Join(values, "\x1f")
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, "\x1f")
}
