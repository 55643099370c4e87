// Command importer loads the roster, question bank and game data files of the
// previous JSON-file deployment into the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"

	"mathking/config"
	"mathking/database"
	"mathking/logger"
	"mathking/repository"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", ".", "directory holding students.json and questions.json")
	dataFile := flag.String("data", "", "game data file (default <dir>/data/data.json)")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.Init(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.InitDB(cfg); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()

	if *dataFile == "" {
		*dataFile = filepath.Join(*dir, "data", "data.json")
	}

	store := repository.NewStore(database.GetDB())
	sum, err := run(context.Background(), store, filepath.Join(*dir, "students.json"), filepath.Join(*dir, "questions.json"), *dataFile)
	if err != nil {
		log.Fatal("import failed", zap.Error(err))
	}

	log.Info("import completed",
		zap.Int("students", sum.Students),
		zap.Int("questions", sum.Questions),
		zap.Int("users", sum.Users),
		zap.Int("broadcasts", sum.Broadcasts))
}

type summary struct {
	Students, Questions, Users, Broadcasts int
}

// run imports everything in one transaction so a bad file leaves the database
// untouched.
func run(ctx context.Context, store *repository.Store, studentsPath, questionsPath, dataPath string) (summary, error) {
	var (
		sum       summary
		students  []legacyStudent
		questions []legacyQuestion
		data      legacyGameData
	)

	if _, err := readJSON(studentsPath, &students); err != nil {
		return sum, err
	}
	if _, err := readJSON(questionsPath, &questions); err != nil {
		return sum, err
	}
	if _, err := readJSON(dataPath, &data); err != nil {
		return sum, err
	}

	err := store.Transaction(ctx, func(r repository.Repositories) error {
		for _, s := range students {
			_, err := r.Students.FindByName(ctx, s.ClassName, s.Name)
			if err == nil {
				zap.L().Warn("skipping duplicate student", zap.String("class", s.ClassName), zap.String("name", s.Name))
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			st := convertStudent(s)
			if err := r.Students.Create(ctx, &st); err != nil {
				return fmt.Errorf("student %s/%s: %w", s.ClassName, s.Name, err)
			}
			sum.Students++
		}

		ids := make(map[uint]uint, len(questions))
		for _, lq := range questions {
			q, err := convertQuestion(lq)
			if err != nil {
				return err
			}
			if err := r.Questions.Create(ctx, &q); err != nil {
				return fmt.Errorf("question %d: %w", lq.ID, err)
			}
			ids[lq.ID] = q.ID
			sum.Questions++
		}

		for _, lu := range data.Users {
			u := convertUser(lu, ids)
			if err := r.Users.Create(ctx, &u); err != nil {
				return fmt.Errorf("user %s/%s: %w", lu.ClassName, lu.Name, err)
			}
			sum.Users++
		}

		// Oldest first so the newest entry ends up with the highest ID.
		for i := len(data.Broadcasts) - 1; i >= 0; i-- {
			b, ok := convertBroadcast(data.Broadcasts[i])
			if !ok {
				continue
			}
			if err := r.Broadcasts.Push(ctx, &b); err != nil {
				return fmt.Errorf("broadcast: %w", err)
			}
			sum.Broadcasts = min(sum.Broadcasts+1, repository.MaxBroadcasts)
		}
		return nil
	})
	return sum, err
}
