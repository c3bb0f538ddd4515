package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"gp-intake-api/config"
	"gp-intake-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultMaxRatingsPerApp caps ratings_per_app unless MAX_RATINGS_PER_APP
// overrides it.
const DefaultMaxRatingsPerApp = 10

// ErrNoEligibleApplications is the expected business condition when the
// eligible pool is empty. It is raised before any reviewer identity is
// created or any assignment written.
var ErrNoEligibleApplications = errors.New("no eligible applications found")

// ValidationError marks a client-input fault on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AllocationRequest is one allocation run triggered by an admin.
type AllocationRequest struct {
	ReviewerEmails []string
	RatingsPerApp  int
	Policy         string
	AssignedBy     int
}

// AssignmentFailure records a single pairing that failed to persist.
type AssignmentFailure struct {
	ApplicationID int    `json:"application_id"`
	ReviewerID    int    `json:"reviewer_id"`
	Reason        string `json:"reason"`
}

// ReviewerWorkload is the per-reviewer count of applications newly assigned
// in this run. Counts reflect only rows that actually persisted.
type ReviewerWorkload struct {
	ReviewerID    int    `json:"reviewer_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AssignedCount int    `json:"assigned_count"`
}

// AllocationResult summarizes one allocator run.
type AllocationResult struct {
	BatchID           string
	Policy            string
	RatingsPerApp     int
	TotalApplications int
	TotalAssignments  int
	ReviewerCount     int
	Assignments       []models.ReviewerAssignment
	Workload          []ReviewerWorkload
	Reviewers         []ResolvedReviewer
	Failures          []AssignmentFailure
}

// AllocatorService distributes review work across reviewers.
type AllocatorService struct {
	db         *gorm.DB
	directory  *ReviewerDirectory
	selector   *ApplicationSelector
	index      *AssignmentIndex
	rng        *rand.Rand
	maxRatings int
}

func NewAllocatorService(db *gorm.DB) *AllocatorService {
	if db == nil {
		db = config.DB
	}
	return &AllocatorService{
		db:         db,
		directory:  NewReviewerDirectory(db),
		selector:   NewApplicationSelector(db),
		index:      NewAssignmentIndex(db),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		maxRatings: maxRatingsPerApp(),
	}
}

// WithRand replaces the random source used by the random policy. Tests fix
// the seed through this.
func (s *AllocatorService) WithRand(rng *rand.Rand) *AllocatorService {
	s.rng = rng
	return s
}

func maxRatingsPerApp() int {
	if v := os.Getenv("MAX_RATINGS_PER_APP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxRatingsPerApp
}

func (s *AllocatorService) validate(req *AllocationRequest) error {
	if len(req.ReviewerEmails) == 0 {
		return &ValidationError{Field: "reviewer_emails", Message: "at least one reviewer email is required"}
	}
	if req.RatingsPerApp < 1 || req.RatingsPerApp > s.maxRatings {
		return &ValidationError{
			Field:   "ratings_per_app",
			Message: fmt.Sprintf("must be between 1 and %d", s.maxRatings),
		}
	}
	if req.Policy != models.PolicyBalanced && req.Policy != models.PolicyRandom {
		return &ValidationError{Field: "logic", Message: "must be 'balanced' or 'random'"}
	}
	return nil
}

// Allocate runs one allocation: selects the eligible pool, resolves the
// reviewer identities, loads the exclusion set, plans assignments under the
// requested policy and persists them row by row. A pairing that loses a
// uniqueness race against a concurrent run is reported as a failure and
// skipped; it never aborts the batch.
func (s *AllocatorService) Allocate(req *AllocationRequest) (*AllocationResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Eligible pool first, so an empty pool aborts before the directory
	// creates any identities.
	apps, err := s.selector.Eligible()
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, ErrNoEligibleApplications
	}

	reviewers, err := s.directory.Resolve(req.ReviewerEmails)
	if err != nil {
		return nil, err
	}
	if len(reviewers) == 0 {
		return nil, &ValidationError{Field: "reviewer_emails", Message: "no reviewers could be resolved"}
	}

	applicationIDs := make([]int, len(apps))
	for i, app := range apps {
		applicationIDs[i] = app.ApplicationID
	}
	slots := make([]reviewerSlot, len(reviewers))
	reviewerIDs := make([]int, len(reviewers))
	for i, r := range reviewers {
		slots[i] = reviewerSlot{ID: r.User.UserID, Email: r.User.Email}
		reviewerIDs[i] = r.User.UserID
	}

	excluded, err := s.index.ExistingPairs(applicationIDs, reviewerIDs)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	planned := planAssignments(slots, applicationIDs, excluded, req.RatingsPerApp, req.Policy, s.rng)

	now := time.Now()
	counts := make(map[int]int, len(reviewers))
	assignments := make([]models.ReviewerAssignment, 0, len(planned))
	var failures []AssignmentFailure

	for _, p := range planned {
		record := models.ReviewerAssignment{
			ApplicationID: p.ApplicationID,
			ReviewerID:    p.ReviewerID,
			AssignedBy:    req.AssignedBy,
			BatchID:       batchID,
			Policy:        req.Policy,
			Status:        models.AssignmentStatusPending,
			AssignedAt:    now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.db.Create(&record).Error; err != nil {
			reason := "insert failed"
			if isDuplicateKeyError(err) {
				reason = "pair already assigned"
			}
			log.Printf("allocation %s: skipping application %d / reviewer %d: %v",
				batchID, p.ApplicationID, p.ReviewerID, err)
			failures = append(failures, AssignmentFailure{
				ApplicationID: p.ApplicationID,
				ReviewerID:    p.ReviewerID,
				Reason:        reason,
			})
			continue
		}
		assignments = append(assignments, record)
		counts[record.ReviewerID]++
	}

	workload := make([]ReviewerWorkload, len(reviewers))
	for i, r := range reviewers {
		workload[i] = ReviewerWorkload{
			ReviewerID:    r.User.UserID,
			Email:         r.User.Email,
			Name:          r.User.DisplayName(),
			AssignedCount: counts[r.User.UserID],
		}
	}

	return &AllocationResult{
		BatchID:           batchID,
		Policy:            req.Policy,
		RatingsPerApp:     req.RatingsPerApp,
		TotalApplications: len(apps),
		TotalAssignments:  len(assignments),
		ReviewerCount:     len(reviewers),
		Assignments:       assignments,
		Workload:          workload,
		Reviewers:         reviewers,
		Failures:          failures,
	}, nil
}

// reviewerSlot is the planner's view of one resolved reviewer.
type reviewerSlot struct {
	ID    int
	Email string
}

// plannedAssignment is one pairing chosen by the planner, before persistence.
type plannedAssignment struct {
	ApplicationID int
	ReviewerID    int
}

// planAssignments walks the eligible applications in order and picks up to
// ratingsPerApp reviewers for each, skipping excluded pairs.
//
// balanced: reviewers are ordered by ascending workload within this run,
// ties broken by input order; each acceptance bumps the chosen reviewer's
// counter before the next application is considered.
//
// random: reviewers are shuffled independently per application; counters
// are kept for reporting only.
//
// Assigning fewer than ratingsPerApp when exclusions exhaust the pool is
// legal, not an error.
func planAssignments(reviewers []reviewerSlot, applicationIDs []int, excluded map[PairKey]struct{}, ratingsPerApp int, policy string, rng *rand.Rand) []plannedAssignment {
	counts := make(map[int]int, len(reviewers))
	order := make([]int, len(reviewers))
	for i := range order {
		order[i] = i
	}

	var planned []plannedAssignment
	for _, appID := range applicationIDs {
		candidates := make([]int, len(order))
		copy(candidates, order)

		if policy == models.PolicyRandom {
			rng.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
		} else {
			sort.SliceStable(candidates, func(i, j int) bool {
				return counts[reviewers[candidates[i]].ID] < counts[reviewers[candidates[j]].ID]
			})
		}

		taken := 0
		for _, idx := range candidates {
			if taken >= ratingsPerApp {
				break
			}
			reviewer := reviewers[idx]
			if _, ok := excluded[PairKey{ApplicationID: appID, ReviewerID: reviewer.ID}]; ok {
				continue
			}
			planned = append(planned, plannedAssignment{ApplicationID: appID, ReviewerID: reviewer.ID})
			counts[reviewer.ID]++
			taken++
		}
	}
	return planned
}
