// Package api provides handlers for external APIs and interfaces
package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/miravand/aquatrend/internal/usecases"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot handles interactions with the Telegram API
type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	useCase *usecases.AnalysisUseCase
}

// NewTelegramBot creates a new Telegram bot handler
func NewTelegramBot(botToken string, useCase *usecases.AnalysisUseCase) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %v", err)
	}

	return &TelegramBot{
		bot:     bot,
		useCase: useCase,
	}, nil
}

// Start begins listening for and handling Telegram messages
func (t *TelegramBot) Start() {
	log.Printf("Authorized on Telegram account %s", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	log.Println("Bot is now listening for messages...")

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("Received message from %s (ID: %d): %s",
			update.Message.From.UserName,
			update.Message.From.ID,
			update.Message.Text)

		t.handleMessage(update)
	}
}

const helpText = "Available commands:\n" +
	"/start - Start the bot\n" +
	"/stations - List the stations in the current dataset\n" +
	"/trend [station] - Trend and control-limit analysis for a station\n" +
	"/ranking - Stations ranked by volatility\n" +
	"/summary - AI narrative summary of the dataset\n" +
	"/help - Show this help message"

// handleMessage processes a Telegram message update
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")

	if !update.Message.IsCommand() {
		log.Printf("Received non-command message from user %s: %s", update.Message.From.UserName, update.Message.Text)
		msg.Text = "I only understand commands. Use /help to see what I can do."
		t.send(msg)
		return
	}

	switch update.Message.Command() {
	case "start":
		log.Printf("Handling /start command for user %s", update.Message.From.UserName)
		msg.Text = "Welcome to the aquatrend bot! I report trends, control limits and volatility rankings " +
			"for the water-quality sampling dataset. Use /help for the command list."
	case "help":
		log.Printf("Handling /help command for user %s", update.Message.From.UserName)
		msg.Text = helpText
	case "stations":
		log.Printf("Handling /stations command for user %s", update.Message.From.UserName)
		stations, err := t.useCase.Stations()
		if err != nil {
			msg.Text = "Error reading the dataset. Please try again later."
			log.Printf("Error fetching stations: %v", err)
			break
		}
		if len(stations) == 0 {
			msg.Text = "The dataset is empty. Upload sampling exports through the dashboard first."
			break
		}
		var b strings.Builder
		b.WriteString("Stations in the dataset:\n\n")
		for _, station := range stations {
			b.WriteString("• " + station + "\n")
		}
		b.WriteString("\nUse /trend [station] for detailed analysis.")
		msg.Text = b.String()
	case "trend":
		args := strings.TrimSpace(update.Message.CommandArguments())
		log.Printf("Handling /trend command with args '%s' for user %s", args, update.Message.From.UserName)
		if args == "" {
			msg.Text = "Please specify a station code. Example: /trend ST-01"
			break
		}
		report, err := t.useCase.Analyze(usecases.DefaultOptions())
		if err != nil {
			msg.Text = "Error running the analysis. Please try again later."
			log.Printf("Error running analysis: %v", err)
			break
		}
		msg.Text = t.useCase.FormatStationAnalysis(report, args)
	case "ranking":
		log.Printf("Handling /ranking command for user %s", update.Message.From.UserName)
		report, err := t.useCase.Analyze(usecases.DefaultOptions())
		if err != nil {
			msg.Text = "Error running the analysis. Please try again later."
			log.Printf("Error running analysis: %v", err)
			break
		}
		msg.Text = t.useCase.FormatRanking(report.Ranking)
	case "summary":
		log.Printf("Handling /summary command for user %s", update.Message.From.UserName)
		ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		summary := t.useCase.Summarize(ctx)
		cancel()

		var b strings.Builder
		b.WriteString(summary.Summary)
		if len(summary.Anomalies) > 0 {
			b.WriteString("\n\n⚠️ ")
			b.WriteString(strings.Join(summary.Anomalies, "\n⚠️ "))
		}
		if len(summary.Recommendations) > 0 {
			b.WriteString("\n\n💡 ")
			b.WriteString(strings.Join(summary.Recommendations, "\n💡 "))
		}
		msg.Text = b.String()
	default:
		log.Printf("Received unknown command /%s from user %s", update.Message.Command(), update.Message.From.UserName)
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	t.send(msg)
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) {
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
