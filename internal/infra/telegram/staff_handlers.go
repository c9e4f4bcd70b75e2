// internal/infra/telegram/staff_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"wellbeing_alert_bot/internal/app"
	"wellbeing_alert_bot/internal/domain/distress"
	"wellbeing_alert_bot/internal/domain/roster"
	idb "wellbeing_alert_bot/internal/infra/database"
	"wellbeing_alert_bot/internal/infra/scheduler"
)

// RegisterStaffHandlers registers the staff-facing commands: ad hoc text
// checks, pending-notification listing/cancellation, and roster
// administration. Everything except /start and /help is admin-gated.
func RegisterStaffHandlers(
	ctx context.Context,
	b *telebot.Bot,
	rosterSvc *app.RosterService,
	analysisSvc *app.AnalysisService,
	sched *scheduler.NotificationScheduler,
	rosterRepo roster.Repository,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithField("handler", "/start").WithField("sender_id", senderID)
		logCtx.Info("Command received")

		if senderID == adminTelegramID {
			return c.Send(fmt.Sprintf("Hello, administrator %s! I watch student wellbeing signals and alert school staff. Use /help for the command list.", c.Sender().FirstName))
		}

		rcpt, err := rosterRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if rcpt.IsActive {
				logCtx.WithField("recipient_id", rcpt.ID).Info("Known active recipient")
				return c.Send(fmt.Sprintf("Hello, %s! You will receive wellbeing alerts for %s here.", rcpt.Name, rcpt.School))
			}
			return c.Send("Your recipient account is inactive. Please contact the administrator.")
		} else if err != idb.ErrRecipientNotFound {
			logCtx.WithError(err).Error("Error checking recipient status")
			return c.Send("Something went wrong while checking your status. Please try again later.")
		}

		return c.Send("Hello! I deliver student wellbeing alerts to school staff. If you should be receiving them, ask your administrator to add you.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		if c.Sender().ID != adminTelegramID {
			return c.Send("Available commands:\n/start — check your alert subscription status")
		}
		return c.Send("Administrator commands:\n" +
			"/check <text> — classify a text and show its risk assessment\n" +
			"/pending — list scheduled notifications\n" +
			"/cancel <id> — cancel a pending notification\n" +
			"/add_recipient <TelegramID> <TEACHER|ADMIN|PARENT> <school> <name> [email] [studentID]\n" +
			"/remove_recipient <TelegramID>\n" +
			"/list_recipients [school]")
	})

	b.Handle("/check", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/check",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		text := strings.TrimSpace(strings.TrimPrefix(c.Text(), "/check"))
		if text == "" {
			return c.Send("Usage: /check <text to analyze>")
		}

		analysis := analysisSvc.Analyze(text)
		handlerLogger.WithFields(logrus.Fields{
			"risk_level": analysis.RiskLevel,
			"language":   analysis.DetectedLanguage,
		}).Info("Ad hoc analysis performed")
		return c.Send(formatAnalysis(analysis))
	})

	b.Handle("/pending", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/pending",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		pending := sched.Snapshot()
		if len(pending) == 0 {
			return c.Send("No pending notifications.")
		}

		var response strings.Builder
		response.WriteString(fmt.Sprintf("--- Pending notifications (%d) ---\n", len(pending)))
		for _, p := range pending {
			response.WriteString(fmt.Sprintf("ID: %s\nStudent: %s (%s), Risk: %s, Rule: %s, Fires at: %s\n\n",
				p.ID, p.StudentName, p.School, p.Analysis.RiskLevel, p.Rule.ID,
				p.ScheduledFor.Format("2006-01-02 15:04:05")))
		}
		return c.Send(response.String())
	})

	b.Handle("/cancel", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/cancel",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /cancel <notification ID>")
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Error: the notification ID must be a valid UUID.")
		}

		if sched.Cancel(id) {
			handlerLogger.WithField("notification_id", id).Info("Notification cancelled")
			return c.Send(fmt.Sprintf("Notification %s cancelled.", id))
		}
		return c.Send("Nothing to cancel: the notification already executed or never existed.")
	})

	b.Handle("/add_recipient", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_recipient",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		args := c.Args()
		// Expected format: /add_recipient <TelegramID> <Role> <School> <Name> [email] [studentID]
		if len(args) < 4 || len(args) > 6 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Invalid format. Use: /add_recipient <TelegramID> <TEACHER|ADMIN|PARENT> <school> <name> [email] [studentID]")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Error: the Telegram ID must be a number.")
		}
		role := roster.Role(strings.ToUpper(args[1]))
		school := args[2]
		name := args[3]
		var email, studentID string
		if len(args) >= 5 {
			email = args[4]
		}
		if len(args) == 6 {
			studentID = args[5]
		}

		handlerLogger = handlerLogger.WithFields(logrus.Fields{
			"recipient_telegram_id": telegramID,
			"role":                  role,
			"school":                school,
		})

		rcpt, err := rosterSvc.AddRecipient(ctx, c.Sender().ID, telegramID, name, role, school, email, studentID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("Error: you are not allowed to run this command.")
			case app.ErrInvalidRole:
				logWithError.Warn("Invalid role")
				return c.Send("Error: the role must be TEACHER, ADMIN or PARENT.")
			case app.ErrRecipientAlreadyExists:
				logWithError.Warn("Recipient already exists")
				return c.Send(fmt.Sprintf("Error: a recipient with Telegram ID %d already exists.", telegramID))
			default:
				logWithError.Error("Failed to add recipient")
				return c.Send(fmt.Sprintf("Something went wrong while adding the recipient: %s", err.Error()))
			}
		}

		handlerLogger.WithField("new_recipient_id", rcpt.ID).Info("Recipient added successfully")
		return c.Send(fmt.Sprintf("Recipient %s (%s at %s) added successfully.", rcpt.Name, rcpt.Role, rcpt.School))
	})

	b.Handle("/remove_recipient", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_recipient",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Invalid format. Use: /remove_recipient <TelegramID>")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			handlerLogger.WithField("arg", args[0]).Warn("Invalid Telegram ID format")
			return c.Send("Error: the Telegram ID must be a number.")
		}
		handlerLogger = handlerLogger.WithField("recipient_telegram_id", telegramID)

		removed, err := rosterSvc.RemoveRecipient(ctx, c.Sender().ID, telegramID)
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch err {
			case app.ErrAdminNotAuthorized:
				logWithError.Warn("Admin not authorized (service level)")
				return c.Send("Error: you are not allowed to run this command.")
			case idb.ErrRecipientNotFound:
				logWithError.Warn("Recipient to remove not found")
				return c.Send(fmt.Sprintf("No recipient with Telegram ID %d was found.", telegramID))
			case app.ErrRecipientAlreadyInactive:
				logWithError.Warn("Recipient already inactive")
				return c.Send(fmt.Sprintf("Recipient %s was already deactivated.", removed.Name))
			default:
				logWithError.Error("Failed to remove recipient")
				return c.Send(fmt.Sprintf("Something went wrong while removing the recipient: %s", err.Error()))
			}
		}

		handlerLogger.WithField("removed_recipient_id", removed.ID).Info("Recipient removed (deactivated) successfully")
		return c.Send(fmt.Sprintf("Recipient %s (Telegram ID: %d) deactivated successfully.", removed.Name, telegramID))
	})

	b.Handle("/list_recipients", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_recipients",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("Error: you are not allowed to run this command.")
		}

		args := c.Args()
		school := ""
		if len(args) > 0 {
			school = args[0]
		}
		handlerLogger = handlerLogger.WithField("school", school)

		recipients, err := rosterSvc.ListRecipients(ctx, c.Sender().ID, school)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list recipients")
			return c.Send(fmt.Sprintf("Something went wrong while listing recipients: %s", err.Error()))
		}
		if len(recipients) == 0 {
			return c.Send("No recipients found.")
		}

		handlerLogger.WithField("recipients_count", len(recipients)).Info("Successfully retrieved recipient list")

		var response strings.Builder
		response.WriteString("--- Recipients ---\n")
		for _, rcpt := range recipients {
			status := "inactive"
			if rcpt.IsActive {
				status = "active"
			}
			response.WriteString(fmt.Sprintf("ID: %d, Telegram ID: %d, Name: %s, Role: %s, School: %s, Status: %s\n",
				rcpt.ID, rcpt.TelegramID.Int64, rcpt.Name, rcpt.Role, rcpt.School, status))
		}
		return c.Send(response.String())
	})
}

func formatAnalysis(a distress.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk level: %s\n", a.RiskLevel)
	fmt.Fprintf(&b, "Detected language: %s\n", a.DetectedLanguage)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", a.Confidence*100)
	if len(a.Indicators) == 0 {
		b.WriteString("Indicators: none")
	} else {
		fmt.Fprintf(&b, "Indicators: %s", strings.Join(a.Indicators, ", "))
	}
	return b.String()
}
