package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lukman83/ammo-bundler/config"
	"github.com/lukman83/ammo-bundler/internal/ammoseek"
	"github.com/lukman83/ammo-bundler/internal/httputil"
	"github.com/lukman83/ammo-bundler/internal/logging"
	"github.com/lukman83/ammo-bundler/internal/optimizer"
	"github.com/lukman83/ammo-bundler/internal/platform"
	"github.com/lukman83/ammo-bundler/internal/stealth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const requestTimeout = 30 * time.Second

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ammobundle",
	Short: "Ammo Bundler - cheapest ammunition bundle CLI & MCP server",
	Long: "A Go-based CLI tool and MCP server that finds the cheapest way to buy a list of " +
		"ammunition items from AmmoSeek listings, from one retailer or one retailer plus free-shipping offers.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("source", "", "Listing source (default: ammoseek)")
	rootCmd.PersistentFlags().String("base-url", "", "Listing site base URL")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: cautious, normal, aggressive, off")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Bool("strict-calibers", false, "Reject calibers missing from the built-in table")
	rootCmd.PersistentFlags().Bool("no-headless", false, "Never fall back to the headless browser")
	rootCmd.PersistentFlags().String("proxy-mode", "", "Proxy mode: direct, file")
	rootCmd.PersistentFlags().String("proxy-file", "", "Path to proxy list file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	flags := rootCmd.PersistentFlags()
	if v, _ := flags.GetString("source"); v != "" {
		cfg.Source = v
	}
	if v, _ := flags.GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := flags.GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := flags.GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := flags.GetBool("strict-calibers"); v {
		cfg.StrictCalibers = true
	}
	if v, _ := flags.GetBool("no-headless"); v {
		cfg.NoHeadless = true
	}
	if v, _ := flags.GetString("proxy-mode"); v != "" {
		cfg.ProxyMode = v
	}
	if v, _ := flags.GetString("proxy-file"); v != "" {
		cfg.ProxyFile = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
}

// buildHTTPClient creates the stealth-wrapped HTTP client from config.
func buildHTTPClient() (*http.Client, error) {
	fpPool := stealth.NewFingerprintPool()
	delay := stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile))
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)

	baseTransport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	var proxyRotator *stealth.ProxyRotator
	switch cfg.ProxyMode {
	case "", "direct":
	case "file":
		if cfg.ProxyFile == "" {
			return nil, fmt.Errorf("proxy mode %q needs a proxy file", cfg.ProxyMode)
		}
		providers, err := stealth.LoadProxyFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
		proxyRotator = stealth.NewProxyRotator(providers)
		logger.Info("proxy rotation enabled", zap.Int("proxies", len(providers)))
	default:
		return nil, fmt.Errorf("unknown proxy mode %q", cfg.ProxyMode)
	}

	robotsClient := httputil.NewHTTPClient(baseTransport, 10*time.Second)
	robots := stealth.NewRobotsChecker(robotsClient, cfg.RespectRobots)

	transport := &stealth.Transport{
		Base:        baseTransport,
		Robots:      robots,
		Fingerprint: fpPool,
		Proxy:       proxyRotator,
		Delay:       delay,
		RateLimiter: limiter,
	}

	return httputil.NewHTTPClient(transport, requestTimeout), nil
}

// initSources registers all available listing sources.
func initSources() error {
	client, err := buildHTTPClient()
	if err != nil {
		return err
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	scraper := ammoseek.NewScraper(client, limiter, ammoseek.Options{
		BaseURL:        cfg.BaseURL,
		StrictCalibers: cfg.StrictCalibers,
		FastTimeout:    cfg.FastTimeout,
		NoHeadless:     cfg.NoHeadless,
		BrowserBin:     cfg.BrowserBin,
		Fingerprints:   stealth.NewFingerprintPool(),
		Delay:          stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile)),
		Logger:         logger.Named("ammoseek"),
	})
	platform.Register("ammoseek", scraper)
	return nil
}

// newOrchestrator registers sources and wires the configured one into an
// Orchestrator.
func newOrchestrator() (*optimizer.Orchestrator, error) {
	if err := initSources(); err != nil {
		return nil, err
	}
	source, err := platform.Get(cfg.Source)
	if err != nil {
		return nil, err
	}
	return optimizer.New(source,
		optimizer.WithLogger(logger.Named("optimizer")),
		optimizer.WithMaxConcurrent(cfg.MaxConcurrent),
	), nil
}
