package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
)

var ErrInvalidMessage = errors.New("message must be between 1 and 1000 characters")

const (
	SourceFAQ = "faq"
	SourceAI  = "ai"

	maxMessageLength = 1000

	replyAIUnavailable = "Sorry, AI service is temporarily unavailable. Please try again later."
	replyAIError       = "Sorry, I encountered an error processing your request. Please try again."
	urgentNotice       = "\n\n🚨 **This seems urgent!** Please contact nearby blood banks or medical services immediately."
)

var (
	urgencyPattern = compileWordList(UrgencyKeywords)
	urlPattern     = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	emailPattern   = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern   = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?(?:\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}|[6-9]\d{9})`)
)

// compileWordList builds one case-insensitive pattern matching any of the
// words on word boundaries.
func compileWordList(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// DetectUrgency reports whether message mentions an emergency.
func DetectUrgency(message string) bool {
	return urgencyPattern.MatchString(message)
}

// RedactContactInfo strips links, e-mail addresses and phone numbers before
// text leaves the service.
func RedactContactInfo(text string) string {
	text = urlPattern.ReplaceAllString(text, "[link]")
	text = emailPattern.ReplaceAllString(text, "[email]")
	return phonePattern.ReplaceAllString(text, "[phone]")
}

// AssistantService answers donation questions from the FAQ table first and
// falls back to an AI completion. Urgency is detected independently and
// annotates either answer.
type AssistantService struct {
	completer Completer
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAssistantService accepts a nil completer when no AI key is configured.
func NewAssistantService(completer Completer, m *metrics.Metrics) *AssistantService {
	return &AssistantService{completer: completer, metrics: m, now: time.Now}
}

func (s *AssistantService) Reply(ctx context.Context, message string) (*dto.ChatResponse, error) {
	msg := strings.TrimSpace(message)
	if n := utf8.RuneCountInString(msg); n == 0 || n > maxMessageLength {
		return nil, ErrInvalidMessage
	}

	urgent := DetectUrgency(msg)

	var response, source string
	if rule := MatchFAQ(msg); rule != nil {
		response = rule.Response + MedicalDisclaimer
		source = SourceFAQ
	} else {
		response = s.askAI(ctx, msg)
		source = SourceAI
	}

	if urgent {
		response += urgentNotice
	}

	s.metrics.AssistantReplied(source, urgent)
	return &dto.ChatResponse{
		Response:  response,
		IsUrgent:  urgent,
		Source:    source,
		Timestamp: s.now().UTC(),
	}, nil
}

func (s *AssistantService) askAI(ctx context.Context, msg string) string {
	if s.completer == nil {
		slog.Warn("assistant fallback requested without AI provider configured")
		return replyAIUnavailable
	}

	text, err := s.completer.Complete(ctx, RedactContactInfo(msg))
	if err != nil {
		slog.Error("ai completion failed", "action", "assistant_completion", "error", err)
		return replyAIError
	}
	return text + MedicalDisclaimer
}
