package services

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/backsoul/quizquest/pkg/models"
)

// LeaderboardSize is the last rank shown on a board
const LeaderboardSize = 10

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

const defaultMedal = "👤"

// BuildLeaderboard ranks users by their best score in category. Equal scores
// share the rank of the first of them and the next score takes its own
// position (50,50,30 ranks 1,1,3). Rows continue while the rank is at most
// LeaderboardSize, so a tie on the last rank can add rows.
func BuildLeaderboard(category string, users []models.User) []models.LeaderboardEntry {
	type row struct {
		name  string
		score int
	}

	rows := make([]row, 0, len(users))
	for _, u := range users {
		if score := u.CategoryScores[category]; score > 0 {
			rows = append(rows, row{name: u.Nickname, score: score})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].score > rows[j].score
	})

	entries := []models.LeaderboardEntry{}
	rank := 0
	for i, r := range rows {
		if i == 0 || r.score != rows[i-1].score {
			rank = i + 1
		}
		if rank > LeaderboardSize {
			break
		}

		medal, ok := medals[rank]
		if !ok {
			medal = defaultMedal
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank:  rank,
			Medal: medal,
			Name:  r.name,
			Score: r.score,
		})
	}
	return entries
}

// UserLister lists registered users
type UserLister interface {
	ListUsers(ctx context.Context) ([]models.User, error)
}

// RankingService builds the boards of every ranking category
type RankingService struct {
	users UserLister
	log   *slog.Logger
}

// NewRankingService creates a RankingService
func NewRankingService(users UserLister, log *slog.Logger) *RankingService {
	return &RankingService{users: users, log: log.With("component", "ranking")}
}

// Leaderboards returns one board per ranking category that has entries, in
// RankingCategories order
func (s *RankingService) Leaderboards(ctx context.Context) ([]models.Leaderboard, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	boards := make([]models.Leaderboard, len(models.RankingCategories))
	g, _ := errgroup.WithContext(ctx)
	for i, category := range models.RankingCategories {
		g.Go(func() error {
			boards[i] = models.Leaderboard{
				Category: category,
				Entries:  BuildLeaderboard(category, users),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]models.Leaderboard, 0, len(boards))
	for _, b := range boards {
		if len(b.Entries) > 0 {
			result = append(result, b)
		}
	}
	s.log.Debug("leaderboards built", "users", len(users), "boards", len(result))
	return result, nil
}
