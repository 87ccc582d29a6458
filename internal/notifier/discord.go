package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/training-calculator/internal/models"
	"go.uber.org/zap"
)

type Notifier interface {
	NotifyRegistration(registration models.Registration, activity string) error
	NotifyDigest(digest Digest) error
}

// Digest summarizes the registrations received in a time window.
type Digest struct {
	Since      time.Time
	Until      time.Time
	Total      int
	ByCategory map[string]int
}

// MessageSender is the part of *discordgo.Session the notifier needs.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   MessageSender
	channelID string
	logger    *zap.Logger
}

// NewDiscordSession opens a bot session for the given token.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return session, nil
}

func NewDiscordNotifier(session MessageSender, channelID string, logger *zap.Logger) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		n.logger.Error("Failed to send discord message", zap.Error(err))
		return err
	}
	return nil
}

func (n *DiscordNotifier) NotifyRegistration(registration models.Registration, activity string) error {
	message := fmt.Sprintf("📝 **New Training Registration** #%d\n**Company:** %s (%s)\n**Category:** %s\n**Employees / Trainees:** %d / %d\n**Contact:** %s, %s, %s\n**Courses:** %s\n**Languages:** %s\n**Locations:** %s",
		registration.ID,
		registration.Name,
		activity,
		models.Category(registration.Percentage),
		registration.EmployeeCount,
		registration.TraineeCount,
		registration.ContactPerson,
		registration.Email,
		registration.ContactMobile,
		registration.Courses,
		registration.Languages,
		registration.Locations,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyDigest(digest Digest) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 **Registrations %s - %s:** %d",
		digest.Since.Format("2006-01-02 15:04"),
		digest.Until.Format("2006-01-02 15:04"),
		digest.Total,
	)

	categories := make([]string, 0, len(digest.ByCategory))
	for c := range digest.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "\n**Category %s:** %d", c, digest.ByCategory[c])
	}

	return n.send(b.String())
}
