package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/common"
)

// debugLogLines is how much of the debug log the log command prints.
const debugLogLines = 20

// Upload runs one batch now. It waits behind a batch started by the
// scheduler rather than running alongside it.
func (a *App) Upload(ctx context.Context) error {
	if err := a.Uploader.RunBatch(ctx); err != nil {
		return err
	}
	printlnFn("Upload finished")
	return nil
}

// Enqueue copies the file at path into the upload queue.
func (a *App) Enqueue(_ context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	if err := a.Queue.Add(name, f); err != nil {
		return err
	}
	printlnFn("Queued", name)
	return nil
}

// Notify sends the test or the survey notification request.
func (a *App) Notify(ctx context.Context, kind string) error {
	var err error
	switch kind {
	case "test":
		err = a.Notifier.SendTestNotification(ctx)
	case "survey":
		err = a.Notifier.SendSurveyNotification(ctx)
	default:
		return fmt.Errorf("unknown notification %q", kind)
	}
	if err != nil {
		return err
	}
	printlnFn("Notification request sent")
	return nil
}

// Token stores and sends a new push token.
func (a *App) Token(ctx context.Context, token string) error {
	if err := a.Notifier.SetPushToken(ctx, token); err != nil {
		return err
	}
	printlnFn("Push token sent")
	return nil
}

// Messages lists stored push messages. "add <text>" stores one, as a push
// would, and "rm <id>" dismisses one.
func (a *App) Messages(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "add":
			if len(args) < 2 {
				printlnFn("Usage: messages add <text>")
				return nil
			}
			m, err := a.Deps.Messages.HandleNewMessage(ctx, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printlnFn("Stored message", m.ID)
			return nil
		case "rm":
			if len(args) != 2 {
				printlnFn("Usage: messages rm <id>")
				return nil
			}
			return a.Deps.Messages.Delete(ctx, args[1])
		default:
			printlnFn("Usage: messages [add <text>|rm <id>]")
			return nil
		}
	}

	list, err := a.Deps.Messages.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printlnFn("No messages")
		return nil
	}
	for _, m := range list {
		printlnFn(fmt.Sprintf("%s  %s  %s", m.ID, m.ReceivedOn.Format(time.RFC3339), m.Content))
	}
	return nil
}

// Status prints the registration state and where requests go.
func (a *App) Status(ctx context.Context) error {
	registered, err := a.Store.IsRegistered(ctx)
	if err != nil {
		return err
	}
	url, err := a.Store.ServerURL(ctx)
	if err != nil {
		return err
	}
	if url == "" {
		url = a.opts.DefaultServerURL
	}
	printlnFn("Server:", url)
	printlnFn("Registered:", registered)

	creds, err := a.Store.Credentials(ctx)
	if errors.Is(err, common.ErrNotRegistered) {
		return nil
	}
	if err != nil {
		return err
	}
	// Credentials without a completed registration mean an attempt failed.
	if bad, err := a.Store.CheckBadRegistration(ctx); err == nil && (bad || !registered) {
		printlnFn("Warning: the last registration did not complete, register again")
	}
	if !registered {
		return nil
	}
	printlnFn("User id:", creds.PatientID)

	study, err := a.Store.Study(ctx)
	if err != nil {
		return err
	}
	if study != nil {
		printlnFn(fmt.Sprintf("Study: %s (%s)", study.Name, study.ID))
	}
	return nil
}

// Log prints the tail of the debug log and every crash event.
func (a *App) Log(ctx context.Context) error {
	lines, err := a.Store.DebugLog(ctx, debugLogLines)
	if err != nil {
		return err
	}
	crashes, err := a.Store.Crashes(ctx)
	if err != nil {
		return err
	}

	printlnFn("Debug log:")
	for _, l := range lines {
		printlnFn(" ", l.Message)
	}
	printlnFn("Crash events:")
	for _, c := range crashes {
		printlnFn(fmt.Sprintf("  %s  %s  %s", c.CreatedAt.Format(time.RFC3339), c.ID, c.Message))
	}
	return nil
}
