// services/game_service.go - Player-facing game operations
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"mathking/cache"
	"mathking/game"
	"mathking/models"
	"mathking/repository"

	"go.uber.org/zap"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrStudentNotFound  = errors.New("student not found in roster")
	ErrAccountMismatch  = errors.New("account does not match roster")
	ErrReceiverNotFound = errors.New("target user not found")
)

const (
	// RecentBroadcastLimit is how many entries GET /api/broadcast returns.
	RecentBroadcastLimit = 5
	// TotalRankLimit caps the global leaderboard.
	TotalRankLimit = 50

	rankCacheTTL     = 10 * time.Second
	rankTotalKey     = "rank:total"
	rankClassKeyBase = "rank:class:"
)

type GameConfig struct {
	DailyLimit time.Duration
	Location   *time.Location
	Source     game.Source
	Clock      func() time.Time
}

// GameService runs every game operation against the store. Mutations are
// serialized by mu and each one commits in a single transaction, so two
// requests touching the same user never overwrite each other.
type GameService struct {
	store *repository.Store
	hub   *BroadcastHub
	cache cache.Cache

	dailyLimit time.Duration
	loc        *time.Location
	rnd        game.Source
	clock      func() time.Time

	mu sync.Mutex
}

func NewGameService(store *repository.Store, hub *BroadcastHub, c cache.Cache, cfg GameConfig) *GameService {
	if c == nil {
		c = cache.Noop{}
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = game.DefaultDailyLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Source == nil {
		cfg.Source = game.NewSource()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &GameService{
		store:      store,
		hub:        hub,
		cache:      c,
		dailyLimit: cfg.DailyLimit,
		loc:        cfg.Location,
		rnd:        cfg.Source,
		clock:      cfg.Clock,
	}
}

func (s *GameService) now() time.Time {
	return s.clock().In(s.loc)
}

// DailyLimit is the per-day play quota.
func (s *GameService) DailyLimit() time.Duration {
	return s.dailyLimit
}

// Remaining is what is left of u's quota today.
func (s *GameService) Remaining(u *models.User) time.Duration {
	return game.Remaining(u, s.dailyLimit)
}

// ================== ROSTER ==================

func (s *GameService) Classes(ctx context.Context) ([]string, error) {
	return s.store.Students.Classes(ctx)
}

func (s *GameService) Students(ctx context.Context, className string) ([]models.Student, error) {
	return s.store.Students.ListByClass(ctx, className)
}

// ================== SESSION ==================

// Login verifies the caller against the roster, then returns their progress
// record, creating it on first login.
func (s *GameService) Login(ctx context.Context, className, name, account string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var (
		user    *models.User
		created bool
	)

	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		student, err := r.Students.FindByName(ctx, className, name)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		if err != nil {
			return err
		}
		if student.Account != "" && student.Account != account {
			return ErrAccountMismatch
		}

		user, err = r.Users.FindByName(ctx, className, name)
		if errors.Is(err, repository.ErrNotFound) {
			user = game.NewUser(className, name, student.Account, now)
			created = true
			return r.Users.Create(ctx, user)
		}
		if err != nil {
			return err
		}

		game.Login(user, now)
		return r.Users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	if created {
		zap.L().Info("created progress record",
			zap.String("user_id", user.ID),
			zap.String("class", className),
			zap.String("name", name))
		s.invalidateRanks(ctx, className)
	}
	return user, nil
}

// UpdateUsage folds the time since the last login/sync into today's total.
func (s *GameService) UpdateUsage(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		if user, err = loadUser(ctx, r, userID); err != nil {
			return err
		}
		game.SyncUsage(user, s.now())
		return r.Users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ================== QUESTIONS ==================

// NextQuestion picks an unanswered question of the requested mode. Callers
// without a progress record get a draw from the whole bank.
func (s *GameService) NextQuestion(ctx context.Context, userID string, mode game.Mode) (game.Selection, error) {
	bank, err := s.store.Questions.List(ctx)
	if err != nil {
		return game.Selection{}, err
	}
	if len(bank) == 0 {
		return game.SelectQuestion(nil, nil, mode, s.rnd), nil
	}

	user, err := s.store.Users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return game.RandomQuestion(bank, s.rnd), nil
	}
	if err != nil {
		return game.Selection{}, err
	}
	return game.SelectQuestion(user, bank, mode, s.rnd), nil
}

// AnswerOutcome is what SubmitAnswer reports back to the player.
type AnswerOutcome struct {
	game.AnswerResult
	User     *models.User
	Question models.Question
}

// SubmitAnswer grades an answer and commits statistics, rewards and the
// broadcast entry together.
func (s *GameService) SubmitAnswer(ctx context.Context, userID string, questionID uint, answer string, mode game.Mode) (*AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &AnswerOutcome{}
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		user, err := loadUser(ctx, r, userID)
		if err != nil {
			return err
		}
		q, err := r.Questions.Get(ctx, questionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		if err != nil {
			return err
		}

		out.User = user
		out.Question = *q
		out.AnswerResult = game.ApplyAnswer(user, *q, answer, mode, s.now(), s.rnd)

		if err := r.Users.Save(ctx, user); err != nil {
			return err
		}
		if out.Broadcast != nil {
			return r.Broadcasts.Push(ctx, out.Broadcast)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.Correct {
		zap.L().Debug("wrong answer",
			zap.String("user_id", userID),
			zap.Uint("question_id", questionID),
			zap.String("mode", mode.String()))
	}
	if out.Broadcast != nil && s.hub != nil {
		s.hub.Publish(*out.Broadcast)
	}
	return out, nil
}

// ================== PROGRESSION ==================

// StartChallenge charges the challenge entry toll.
func (s *GameService) StartChallenge(ctx context.Context, userID string) (*models.User, error) {
	return s.mutateUser(ctx, userID, game.StartChallenge)
}

// Upgrade levels the user up when they can afford it.
func (s *GameService) Upgrade(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.mutateUser(ctx, userID, game.Upgrade)
	if err != nil {
		return nil, err
	}
	zap.L().Info("user levelled up", zap.String("user_id", user.ID), zap.Int("level", user.Level))
	s.invalidateRanks(ctx, user.ClassName)
	return user, nil
}

// Gift moves amount of element from the sender to the classmate identified by
// (targetClass, targetName). A classmate who never logged in gets a progress
// record created from the roster.
func (s *GameService) Gift(ctx context.Context, fromID, targetClass, targetName, element string, amount int) (sender, receiver *models.User, err error) {
	el, ok := models.ParseElement(element)
	if !ok {
		return nil, nil, game.ErrUnknownElement
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := false
	err = s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		if sender, err = loadUser(ctx, r, fromID); err != nil {
			return err
		}

		receiver, err = r.Users.FindByName(ctx, targetClass, targetName)
		if errors.Is(err, repository.ErrNotFound) {
			student, err := r.Students.FindByName(ctx, targetClass, targetName)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReceiverNotFound
			}
			if err != nil {
				return err
			}
			receiver = game.NewUser(student.ClassName, student.Name, student.Account, now)
			created = true
		} else if err != nil {
			return err
		}

		if err := game.Gift(sender, receiver, el, amount); err != nil {
			return err
		}

		if err := r.Users.Save(ctx, sender); err != nil {
			return err
		}
		if created {
			return r.Users.Create(ctx, receiver)
		}
		return r.Users.Save(ctx, receiver)
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("gift sent",
		zap.String("from", sender.ID),
		zap.String("to", receiver.ID),
		zap.String("element", string(el)),
		zap.Int("amount", amount))
	if created {
		s.invalidateRanks(ctx, receiver.ClassName)
	}
	return sender, receiver, nil
}

// mutateUser loads a user, applies fn and saves the result in one transaction.
func (s *GameService) mutateUser(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var user *models.User
	err := s.store.Transaction(ctx, func(r repository.Repositories) error {
		var err error
		if user, err = loadUser(ctx, r, userID); err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		return r.Users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ================== READS ==================

// User returns a progress record.
func (s *GameService) User(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.store.Users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *GameService) RecentBroadcasts(ctx context.Context) ([]models.Broadcast, error) {
	return s.store.Broadcasts.Recent(ctx, RecentBroadcastLimit)
}

// ClassRank lists a class by level, highest first.
func (s *GameService) ClassRank(ctx context.Context, className string) ([]models.User, error) {
	return s.cachedRank(ctx, rankClassKeyBase+className, func() ([]models.User, error) {
		return s.store.Users.RankByClass(ctx, className)
	})
}

// TotalRank lists the top TotalRankLimit users by level.
func (s *GameService) TotalRank(ctx context.Context) ([]models.User, error) {
	return s.cachedRank(ctx, rankTotalKey, func() ([]models.User, error) {
		return s.store.Users.RankTotal(ctx, TotalRankLimit)
	})
}

func (s *GameService) cachedRank(ctx context.Context, key string, load func() ([]models.User, error)) ([]models.User, error) {
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		zap.L().Warn("rank cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var users []models.User
		if err := json.Unmarshal(data, &users); err == nil {
			return users, nil
		}
	}

	users, err := load()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(users); err == nil {
		if err := s.cache.Set(ctx, key, data, rankCacheTTL); err != nil {
			zap.L().Warn("rank cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return users, nil
}

// invalidateRanks drops the cached leaderboards a change in className affects.
func (s *GameService) invalidateRanks(ctx context.Context, className string) {
	if err := s.cache.Delete(ctx, rankTotalKey, rankClassKeyBase+className); err != nil {
		zap.L().Warn("rank cache invalidation failed", zap.Error(err))
	}
}

func loadUser(ctx context.Context, r repository.Repositories, id string) (*models.User, error) {
	u, err := r.Users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return u, nil
}
