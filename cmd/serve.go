package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ride-booking-api/auth"
	"ride-booking-api/config"
	"ride-booking-api/handlers"
	"ride-booking-api/mailer"
	"ride-booking-api/ratelimit"
	"ride-booking-api/routes"
	"ride-booking-api/social"
	"ride-booking-api/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Runs the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{"listen": "listen_addr"})
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			router, err := buildRouter(cfg, s)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg.ListenAddr, router)
		},
	}
	cmd.Flags().String("listen", "", "Address to listen on, overrides listen_addr")
	return cmd
}

// buildRouter wires the configured services into the HTTP surface.
func buildRouter(cfg *config.Config, s *store.Store) (*gin.Engine, error) {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)
	if err != nil {
		return nil, err
	}
	sender, err := newSender(cfg)
	if err != nil {
		return nil, err
	}

	h := handlers.New(
		s,
		tokens,
		auth.NewOTPIssuer(cfg.JWT.Issuer, cfg.OTP.TTL, cfg.OTP.Digits),
		auth.NewPasswords(cfg.BcryptCost),
		sender,
		cfg.Policy,
		cfg.IsDevelopment(),
	)
	if cfg.Google.Enabled() {
		h.Google = social.NewGoogle(social.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		h.States = social.NewStateSigner(cfg.JWT.Secret, cfg.Google.StateTTL)
	} else {
		logrus.Info("google.client_id not set, Google sign-in disabled")
	}
	return routes.NewRouter(routes.Options{Handler: h, Limiter: newLimiter(cfg)}), nil
}

func newSender(cfg *config.Config) (mailer.Sender, error) {
	if cfg.Mail.Host == "" {
		logrus.Warn("mail.host not set, codes will only be logged")
		return mailer.LogSender{RevealCodes: cfg.IsDevelopment()}, nil
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Hostname: cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
		CodeTTL:  cfg.OTP.TTL,
	})
}

func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.Redis.Addr == "" {
		return ratelimit.Noop{}
	}
	client := ratelimit.OpenRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	return ratelimit.NewRedisLimiter(client, cfg.RateLimit.Attempts, cfg.RateLimit.Window)
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logrus.Infof("listening on http://%s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
