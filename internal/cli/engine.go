package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/connector"
	"github.com/glintlabs/glint/internal/connector/hn"
	"github.com/glintlabs/glint/internal/connector/reddit"
	"github.com/glintlabs/glint/internal/connector/rss"
	"github.com/glintlabs/glint/internal/connector/telegram"
	"github.com/glintlabs/glint/internal/connector/youtube"
	"github.com/glintlabs/glint/internal/engine"
)

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// buildEngine registers one connector per configured platform. A platform
// whose Connect fails is skipped with a warning; the sweep runs with
// whatever connected.
func buildEngine(ctx context.Context, cfg *config.Config, logger *log.Logger) (*engine.Engine, error) {
	eng := engine.New(cfg.SourceTimeout.Duration, logger)

	var conns []connector.Connector

	if len(cfg.Platforms.Telegram.Sources) > 0 {
		apiID, err := strconv.Atoi(cfg.Platforms.Telegram.APIID)
		if err != nil || apiID == 0 {
			logger.Printf("warning: telegram: api id %q is not a number, skipping platform", cfg.Platforms.Telegram.APIID)
		} else {
			conns = append(conns, telegram.New(telegram.Options{
				APIID:       apiID,
				APIHash:     cfg.Platforms.Telegram.APIHash,
				SessionFile: cfg.Platforms.Telegram.SessionFile,
				Logger:      logger,
			}))
		}
	}
	if len(cfg.Platforms.RSS.Sources) > 0 {
		conns = append(conns, rss.New(rss.Options{Logger: logger}))
	}
	if len(cfg.Platforms.Reddit.Sources) > 0 {
		conns = append(conns, reddit.New(reddit.Options{Logger: logger}))
	}
	if len(cfg.Platforms.YouTube.Sources) > 0 {
		conns = append(conns, youtube.New(youtube.Options{
			APIKey: cfg.Platforms.YouTube.APIKey,
			Logger: logger,
		}))
	}
	if len(cfg.Platforms.HN.Sources) > 0 {
		conns = append(conns, hn.New(hn.Options{
			MinPoints: cfg.Platforms.HN.MinPoints,
			Logger:    logger,
		}))
	}

	for _, c := range conns {
		if err := eng.Register(ctx, c); err != nil {
			if errors.Is(err, connector.ErrAuthRequired) {
				logger.Printf("warning: %s: authorization required; sign in with your session tool and retry", c.Platform())
				continue
			}
			logger.Printf("warning: %s: %v, skipping platform", c.Platform(), err)
		}
	}

	if len(eng.Platforms()) == 0 {
		eng.Close()
		return nil, fmt.Errorf("no platform could be connected")
	}
	return eng, nil
}
