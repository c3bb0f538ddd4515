package services

import (
	"database/sql/driver"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"gp-intake-api/models"

	"github.com/go-sql-driver/mysql"
)

var (
	insertUserPattern = regexp.MustCompile("INSERT INTO .users.")
	updateUserPattern = regexp.MustCompile("UPDATE .users. SET")
)

func TestNormalizeReviewerEmails(t *testing.T) {
	input := []string{
		"  Alice@Example.COM ",
		"bob@example.com",
		"alice@example.com",
		"",
		"Bob@example.com",
		"carol@example.com",
	}

	got := NormalizeReviewerEmails(input)
	want := []string{"alice@example.com", "bob@example.com", "carol@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveCreatesNewReviewer(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"new@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{},
		},
		{
			kind:    kindExec,
			pattern: insertUserPattern,
			result:  scriptedResult{lastInsertID: 42, rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	directory := NewReviewerDirectory(db)
	resolved, err := directory.Resolve([]string{"New@Example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(resolved) != 1 {
		t.Fatalf("expected 1 reviewer, got %d", len(resolved))
	}
	if resolved[0].Outcome != ReviewerCreated {
		t.Fatalf("expected created outcome, got %s", resolved[0].Outcome)
	}
	if resolved[0].User.UserID != 42 || resolved[0].User.RoleID != models.RoleReviewer {
		t.Fatalf("unexpected identity: %+v", resolved[0].User)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestResolvePromotesExistingNonReviewer(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"applicant@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(7), "applicant@example.com", int64(models.RoleApplicant)}},
		},
		{
			kind:    kindExec,
			pattern: updateUserPattern,
			result:  scriptedResult{rowsAffected: 1},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	directory := NewReviewerDirectory(db)
	resolved, err := directory.Resolve([]string{"applicant@example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if resolved[0].Outcome != ReviewerPromoted {
		t.Fatalf("expected promoted outcome, got %s", resolved[0].Outcome)
	}
	if resolved[0].User.RoleID != models.RoleReviewer {
		t.Fatalf("role was not promoted: %+v", resolved[0].User)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestResolveReusesExistingReviewerWithoutWrites(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"reviewer@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(9), "reviewer@example.com", int64(models.RoleReviewer)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	directory := NewReviewerDirectory(db)
	resolved, err := directory.Resolve([]string{"reviewer@example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if resolved[0].Outcome != ReviewerReused {
		t.Fatalf("expected reused outcome, got %s", resolved[0].Outcome)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestResolveRecoversFromCreateRace(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"raced@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{},
		},
		{
			// Another resolution created the same email first; the unique
			// index on users.email rejects ours.
			kind:    kindExec,
			pattern: insertUserPattern,
			err:     &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"},
		},
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"raced@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(13), "raced@example.com", int64(models.RoleReviewer)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	directory := NewReviewerDirectory(db)
	resolved, err := directory.Resolve([]string{"raced@example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if resolved[0].Outcome != ReviewerReused {
		t.Fatalf("expected reused outcome after race, got %s", resolved[0].Outcome)
	}
	if resolved[0].User.UserID != 13 {
		t.Fatalf("expected the winning identity, got %+v", resolved[0].User)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestResolveAbortsWholeRunOnStorageFailure(t *testing.T) {
	storageErr := errors.New("connection refused")
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"a@example.com"},
			columns: []string{"user_id", "email", "role_id"},
			rows:    [][]driver.Value{{int64(1), "a@example.com", int64(models.RoleReviewer)}},
		},
		{
			kind:    kindQuery,
			pattern: userByEmailPattern,
			args:    []driver.Value{"b@example.com"},
			err:     storageErr,
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	directory := NewReviewerDirectory(db)
	resolved, err := directory.Resolve([]string{"a@example.com", "b@example.com"})
	if err == nil {
		t.Fatalf("expected resolution to fail")
	}
	if resolved != nil {
		t.Fatalf("partial resolution must not be returned: %+v", resolved)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
