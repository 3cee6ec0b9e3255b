package dump

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/declanbyrne/ryanairdump/pkg/output"
	"github.com/declanbyrne/ryanairdump/poll"
	"github.com/declanbyrne/ryanairdump/ryanair"
	"github.com/declanbyrne/ryanairdump/session"
)

// Config gathers everything the commands need, resolved by cmd from flags,
// config file and environment.
type Config struct {
	Email        string
	Password     string
	StorePath    string
	SaveDir      string
	JSONMode     bool
	PollInterval time.Duration
}

// app wires the session manager, output and filesystem for one command run.
type app struct {
	manager     *session.Manager
	out         *output.OutputLogger
	fs          FileSystem
	fingerprint string
	saveDir     string
	email       string
}

func newApp(cfg Config) (*app, error) {
	if cfg.Email == "" {
		return nil, fmt.Errorf("email is required (flag, config file or RYR_EMAIL)")
	}

	out, err := output.New(cfg.JSONMode)
	if err != nil {
		return nil, err
	}

	store, err := session.NewFileStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(ryanair.New(), store, out.Logger)

	var fingerprint string
	if cfg.Password != "" {
		// With a password on hand the manager can re-login transparently
		// when the stored session fully expires.
		fingerprint, err = manager.SetCredentials(cfg.Email, cfg.Password)
	} else {
		fingerprint, err = ryanair.Fingerprint(cfg.Email)
	}
	if err != nil {
		return nil, err
	}

	saveDir, err := homedir.Expand(cfg.SaveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to expand save dir: %w", err)
	}

	return &app{
		manager:     manager,
		out:         out,
		fs:          NewOSFileSystem(),
		fingerprint: fingerprint,
		saveDir:     saveDir,
		email:       cfg.Email,
	}, nil
}

// Login authenticates with email and password, walking the MFA verification
// step interactively when the device fingerprint is unknown.
func Login(ctx context.Context, cfg Config) error {
	if cfg.Password == "" {
		return fmt.Errorf("password is required for login (flag, config file or RYR_PASSWORD)")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	challenge, err := a.manager.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return err
	}

	if challenge != nil {
		a.out.Status("Please enter the 8 character verification code sent to %s", cfg.Email)
		for {
			code, err := a.out.PromptSecret("Verification code")
			if err != nil {
				return err
			}

			err = a.manager.SubmitMFA(ctx, challenge, code)
			if err == nil {
				break
			}
			if !errors.Is(err, ryanair.ErrInvalidAuth) {
				return err
			}
			a.out.Error("%v", err)
		}
	}

	a.out.Result("Logged in as %s", cfg.Email)
	return nil
}

// Profile fetches and displays the customer profile.
func Profile(ctx context.Context, cfg Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	profile, err := a.manager.FetchProfile(ctx, a.fingerprint)
	if err != nil {
		return err
	}

	if cfg.JSONMode {
		return a.out.JSON(profile)
	}
	a.out.Status("%s %s <%s>", profile.FirstName, profile.LastName, profile.Email)
	return nil
}

// Orders fetches and displays active bookings.
func Orders(ctx context.Context, cfg Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	orders, err := a.manager.FetchOrders(ctx, a.fingerprint)
	if err != nil {
		return err
	}

	if cfg.JSONMode {
		return a.out.JSON(orders)
	}

	if len(orders.Items) == 0 {
		a.out.Status("No active bookings")
		return nil
	}
	for _, item := range orders.Items {
		booking := item.RawBooking
		a.out.Status("Booking %s (%s)", booking.RecordLocator, booking.Status)
		for _, journey := range booking.Flights {
			for _, segment := range journey.Segments {
				a.out.Progress("  %s %s -> %s departs %s",
					segment.FlightNumber, segment.Origin, segment.Destination, segment.Times.DepartUTC)
			}
		}
	}
	return nil
}

// BoardingPasses fetches boarding passes for every active booking and saves
// each one as a JSON file under the save directory.
func BoardingPasses(ctx context.Context, cfg Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	if err := a.fs.MkdirAll(a.saveDir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	orders, err := a.manager.FetchOrders(ctx, a.fingerprint)
	if err != nil {
		return err
	}

	saved, existed := 0, 0
	for _, item := range orders.Items {
		bookingRef := item.RawBooking.RecordLocator

		passes, err := a.manager.FetchBoardingPasses(ctx, a.fingerprint, bookingRef, a.email)
		if err != nil {
			a.out.LogAndShowError(err, "Failed to fetch boarding passes for %s", bookingRef)
			continue
		}

		for _, result := range savePasses(a.fs, a.saveDir, bookingRef, passes) {
			switch {
			case result.Err != nil:
				a.out.LogAndShowError(result.Err, "Failed to save a boarding pass for %s", bookingRef)
			case result.Existed:
				existed++
			default:
				saved++
				a.out.Progress("Saved %s", result.FilePath)
			}
		}
	}

	a.out.Result("Boarding passes: %d saved, %d already present", saved, existed)
	return nil
}

// BookingDetails fetches and displays one booking by reference.
func BookingDetails(ctx context.Context, cfg Config, bookingRef string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	details, err := a.manager.FetchBookingDetails(ctx, a.fingerprint, bookingRef)
	if err != nil {
		return err
	}

	if cfg.JSONMode {
		return a.out.JSON(details)
	}
	a.out.Status("Booking %s: %s", bookingRef, string(details))
	return nil
}

// Watch polls profile and orders on an interval, surfacing failures without
// exiting. Runs until the context is cancelled.
func Watch(ctx context.Context, cfg Config) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}

	fetch := func(ctx context.Context) error {
		profile, err := a.manager.FetchProfile(ctx, a.fingerprint)
		if err != nil {
			return err
		}

		orders, err := a.manager.FetchOrders(ctx, a.fingerprint)
		if err != nil {
			return err
		}

		a.out.Status("%s: %d active booking(s)", profile.Email, len(orders.Items))
		return nil
	}

	a.out.Progress("Watching account %s every %s", cfg.Email, cfg.PollInterval)

	poller := poll.New(cfg.PollInterval, fetch, a.out.Logger)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
