package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/complyance/governance/application/port/inbound"
	"github.com/complyance/governance/infrastructure/bootstrap"
	"github.com/complyance/governance/infrastructure/config"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const seedActor = "seed"

var seedRoles = []string{"USER", "EDITOR", "ADMIN"}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "governance-seed",
	})

	storage, err := bootstrap.OpenStorage(ctx, cfg, structuredLogger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	useCases := bootstrap.NewUseCases(storage, bootstrap.Options{
		GracePeriod: cfg.GracePeriod,
		Logger:      structuredLogger,
	})

	users, posts, err := seed(ctx, storage, useCases, cfg.SeedUsers, cfg.SeedPostsPerUser, rand.New(rand.NewSource(1)))
	if err != nil {
		structuredLogger.Error(ctx, "Seeding failed", err, nil)
		log.Fatalf("Seeding failed: %v", err)
	}
	structuredLogger.Info(ctx, "Seeding finished", map[string]interface{}{
		"users": users,
		"posts": posts,
	})
}

// seed creates userCount users with postsPerUser posts each through the
// lifecycle use cases. It does nothing when users or posts already exist.
func seed(ctx context.Context, storage *bootstrap.Storage, uc *bootstrap.UseCases, userCount, postsPerUser int, rnd *rand.Rand) (int, int, error) {
	existingUsers, err := storage.Users.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	existingPosts, err := storage.Posts.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	if existingUsers > 0 || existingPosts > 0 {
		return 0, 0, nil
	}

	var users, posts int
	for i := 1; i <= userCount; i++ {
		user, err := uc.Users.CreateUser(ctx, seedActor, inbound.CreateUserRequest{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Name:     fmt.Sprintf("Seed User %d", i),
			Roles:    []string{seedRoles[rnd.Intn(len(seedRoles))]},
		})
		if err != nil {
			return users, posts, fmt.Errorf("create user %d: %w", i, err)
		}
		users++

		for j := 1; j <= postsPerUser; j++ {
			_, err := uc.Posts.CreatePost(ctx, user.ID, inbound.CreatePostRequest{
				Title:   fmt.Sprintf("Post %d by %s", j, user.Username),
				Content: fmt.Sprintf("Seeded content %d for %s.", j, user.Name),
			})
			if err != nil {
				return users, posts, fmt.Errorf("create post %d for %s: %w", j, user.ID, err)
			}
			posts++
		}
	}
	return users, posts, nil
}
