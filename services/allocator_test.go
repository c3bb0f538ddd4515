package services

import (
	"math/rand"
	"reflect"
	"testing"

	"gp-intake-api/models"
)

func testReviewers(ids ...int) []reviewerSlot {
	slots := make([]reviewerSlot, len(ids))
	for i, id := range ids {
		slots[i] = reviewerSlot{ID: id}
	}
	return slots
}

func countByReviewer(planned []plannedAssignment) map[int]int {
	counts := make(map[int]int)
	for _, p := range planned {
		counts[p.ReviewerID]++
	}
	return counts
}

func TestPlanAssignmentsBalancedRoundRobin(t *testing.T) {
	reviewers := testReviewers(1, 2, 3)
	apps := []int{101, 102, 103, 104, 105}

	planned := planAssignments(reviewers, apps, nil, 1, models.PolicyBalanced, nil)

	want := []plannedAssignment{
		{ApplicationID: 101, ReviewerID: 1},
		{ApplicationID: 102, ReviewerID: 2},
		{ApplicationID: 103, ReviewerID: 3},
		{ApplicationID: 104, ReviewerID: 1},
		{ApplicationID: 105, ReviewerID: 2},
	}
	if !reflect.DeepEqual(planned, want) {
		t.Fatalf("unexpected plan: %+v", planned)
	}

	counts := countByReviewer(planned)
	if counts[1] != 2 || counts[2] != 2 || counts[3] != 1 {
		t.Fatalf("unexpected workload: %v", counts)
	}
}

func TestPlanAssignmentsBalancedIsDeterministic(t *testing.T) {
	reviewers := testReviewers(7, 3, 9, 5)
	apps := []int{1, 2, 3, 4, 5, 6, 7}
	excluded := map[PairKey]struct{}{
		{ApplicationID: 2, ReviewerID: 7}: {},
		{ApplicationID: 5, ReviewerID: 9}: {},
	}

	first := planAssignments(reviewers, apps, excluded, 2, models.PolicyBalanced, nil)
	second := planAssignments(reviewers, apps, excluded, 2, models.PolicyBalanced, nil)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("balanced policy diverged across runs:\n%+v\n%+v", first, second)
	}
}

func TestPlanAssignmentsRespectsExclusions(t *testing.T) {
	reviewers := testReviewers(1, 2, 3)
	apps := []int{101, 102, 103, 104, 105}
	excluded := map[PairKey]struct{}{
		{ApplicationID: 101, ReviewerID: 1}: {},
	}

	planned := planAssignments(reviewers, apps, excluded, 1, models.PolicyBalanced, nil)

	if len(planned) != 5 {
		t.Fatalf("expected 5 assignments, got %d", len(planned))
	}
	if planned[0].ApplicationID != 101 || planned[0].ReviewerID != 2 {
		t.Fatalf("expected application 101 to fall to reviewer 2, got %+v", planned[0])
	}
	for _, p := range planned {
		if _, ok := excluded[PairKey{ApplicationID: p.ApplicationID, ReviewerID: p.ReviewerID}]; ok {
			t.Fatalf("excluded pair was assigned: %+v", p)
		}
	}
}

func TestPlanAssignmentsCapsPerApplication(t *testing.T) {
	reviewers := testReviewers(1, 2, 3)
	apps := []int{50, 51}

	planned := planAssignments(reviewers, apps, nil, 2, models.PolicyBalanced, nil)

	perApp := make(map[int]int)
	for _, p := range planned {
		perApp[p.ApplicationID]++
	}
	for app, n := range perApp {
		if n != 2 {
			t.Fatalf("application %d got %d assignments, want 2", app, n)
		}
	}
}

func TestPlanAssignmentsAssignsFewerWhenPoolExhausted(t *testing.T) {
	reviewers := testReviewers(1, 2)
	apps := []int{10}
	excluded := map[PairKey]struct{}{
		{ApplicationID: 10, ReviewerID: 1}: {},
	}

	// Requested 3 per application but only one non-excluded reviewer exists.
	planned := planAssignments(reviewers, apps, excluded, 3, models.PolicyBalanced, nil)

	if len(planned) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(planned))
	}
	if planned[0].ReviewerID != 2 {
		t.Fatalf("expected reviewer 2, got %d", planned[0].ReviewerID)
	}
}

func TestPlanAssignmentsBalancedFairness(t *testing.T) {
	reviewers := testReviewers(1, 2, 3, 4)
	apps := make([]int, 10)
	for i := range apps {
		apps[i] = 100 + i
	}

	planned := planAssignments(reviewers, apps, nil, 1, models.PolicyBalanced, nil)
	counts := countByReviewer(planned)

	min, max := len(apps), 0
	for _, r := range reviewers {
		n := counts[r.ID]
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	if max-min > 1 {
		t.Fatalf("balanced workload spread exceeds 1: %v", counts)
	}
}

func TestPlanAssignmentsRandomHoldsInvariants(t *testing.T) {
	reviewers := testReviewers(1, 2, 3)
	apps := []int{201, 202, 203, 204}
	excluded := map[PairKey]struct{}{
		{ApplicationID: 201, ReviewerID: 3}: {},
	}
	rng := rand.New(rand.NewSource(42))

	planned := planAssignments(reviewers, apps, excluded, 2, models.PolicyRandom, rng)

	seen := make(map[plannedAssignment]bool)
	perApp := make(map[int]int)
	for _, p := range planned {
		if seen[p] {
			t.Fatalf("duplicate pair planned: %+v", p)
		}
		seen[p] = true
		perApp[p.ApplicationID]++
		if _, ok := excluded[PairKey{ApplicationID: p.ApplicationID, ReviewerID: p.ReviewerID}]; ok {
			t.Fatalf("excluded pair was assigned: %+v", p)
		}
	}
	for app, n := range perApp {
		if n > 2 {
			t.Fatalf("application %d exceeded cap: %d", app, n)
		}
	}
	// 3 reviewers, cap 2, one exclusion: every application still fills its cap.
	if len(planned) != 8 {
		t.Fatalf("expected 8 assignments, got %d", len(planned))
	}
}

func TestPlanAssignmentsRandomSeededIsReproducible(t *testing.T) {
	reviewers := testReviewers(1, 2, 3, 4, 5)
	apps := []int{1, 2, 3, 4, 5, 6}

	first := planAssignments(reviewers, apps, nil, 2, models.PolicyRandom, rand.New(rand.NewSource(7)))
	second := planAssignments(reviewers, apps, nil, 2, models.PolicyRandom, rand.New(rand.NewSource(7)))

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different plans:\n%+v\n%+v", first, second)
	}
}
