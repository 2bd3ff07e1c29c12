package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/breachcase/breachwatch/internal/config"
	"github.com/breachcase/breachwatch/internal/model"
	"github.com/breachcase/breachwatch/internal/resilience"
	"github.com/breachcase/breachwatch/pkg/anthropic"
)

// Processor defines the three model calls the pipeline depends on. It is an
// interface so tests can supply deterministic fixtures instead of live calls.
type Processor interface {
	// Classify is the stage-1 gate: is this article about a data breach at all.
	Classify(ctx context.Context, article model.RawArticle) (*model.Classification, error)

	// Extract pulls structured breach facts out of a confirmed article.
	Extract(ctx context.Context, article model.RawArticle) (*model.Extraction, error)

	// DetectUpdate classifies the article against candidate breaches as
	// NEW_BREACH, GENUINE_UPDATE, or DUPLICATE_SOURCE. The structural signals
	// are rendered into the prompt so the model never has to re-derive
	// numeric closeness from prose.
	DetectUpdate(ctx context.Context, article model.RawArticle, candidates []model.Breach, signals map[string]model.MatchSignal) (*model.UpdateCheck, error)
}

// processor implements Processor over the Anthropic client.
type processor struct {
	client   anthropic.Client
	cfg      config.AnthropicConfig
	limiter  *rate.Limiter
	retryCfg resilience.RetryConfig
}

// NewProcessor creates a Processor with rate limiting and retry behavior
// derived from cfg.
func NewProcessor(client anthropic.Client, cfg config.AnthropicConfig) Processor {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	retryCfg := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.MaxRetries
	}
	return &processor{
		client:   client,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		retryCfg: retryCfg,
	}
}

// call performs one rate-limited, retried, time-bounded message round trip
// and returns the concatenated text content.
func (p *processor) call(ctx context.Context, operation string, req anthropic.MessageRequest) (string, error) {
	timeout := time.Duration(p.cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	retryCfg := p.retryCfg
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", operation)

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.client.CreateMessage(callCtx, req)
	})
	if err != nil {
		return "", eris.Wrapf(err, "ai: %s", operation)
	}

	resp.Usage.LogCost(p.cfg.Model, operation)
	return extractText(resp), nil
}

func (p *processor) Classify(ctx context.Context, article model.RawArticle) (*model.Classification, error) {
	summary := truncate(article.Summary, 500)

	temp := 0.1
	text, err := p.call(ctx, "classify", anthropic.MessageRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.classificationMaxTokens(),
		System:      classifySystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(classifyUserPrompt, article.Title, summary)},
		},
	})
	if err != nil {
		return nil, err
	}

	var raw struct {
		IsBreach   bool    `json:"is_breach"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, &ValidationError{Reason: "classification is not valid JSON"}
	}

	return &model.Classification{
		IsBreach:   raw.IsBreach,
		Confidence: clamp01(raw.Confidence),
		Reasoning:  raw.Reasoning,
	}, nil
}

func (p *processor) Extract(ctx context.Context, article model.RawArticle) (*model.Extraction, error) {
	temp := 0.1
	text, err := p.call(ctx, "extract", anthropic.MessageRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.maxTokens(),
		System:      extractSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractUserPrompt,
				article.Title, article.URL, article.Summary, time.Now().Format("2006-01-02"))},
		},
	})
	if err != nil {
		return nil, err
	}

	extraction, err := parseExtraction(text)
	if err != nil {
		return nil, err
	}

	zap.L().Info("extracted breach data",
		zap.String("url", article.URL),
		zap.String("company", extraction.Company),
	)
	return extraction, nil
}

func (p *processor) DetectUpdate(ctx context.Context, article model.RawArticle, candidates []model.Breach, signals map[string]model.MatchSignal) (*model.UpdateCheck, error) {
	temp := 0.2
	text, err := p.call(ctx, "detect_update", anthropic.MessageRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.maxTokens(),
		System:      detectSystemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(detectUserPrompt,
				article.Title, article.URL, article.Summary,
				RenderCandidates(candidates, signals))},
		},
	})
	if err != nil {
		return nil, err
	}

	return parseUpdateCheck(text)
}

func (p *processor) maxTokens() int64 {
	if p.cfg.MaxTokens > 0 {
		return p.cfg.MaxTokens
	}
	return 8192
}

func (p *processor) classificationMaxTokens() int64 {
	if p.cfg.ClassificationMaxTokens > 0 {
		return p.cfg.ClassificationMaxTokens
	}
	return 300
}

// parseExtraction validates the extraction response against the required
// field set and value domains. Company and summary are mandatory; an attack
// vector outside the fixed enumeration is a validation failure rather than a
// silently nulled field.
func parseExtraction(text string) (*model.Extraction, error) {
	var raw model.Extraction
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, &ValidationError{Reason: "extraction is not valid JSON"}
	}

	raw.Company = strings.TrimSpace(raw.Company)
	if raw.Company == "" {
		return nil, &ValidationError{Field: "company", Reason: "missing required field"}
	}
	if strings.TrimSpace(raw.Summary) == "" {
		return nil, &ValidationError{Field: "summary", Reason: "missing required field"}
	}

	if raw.AttackVector != nil && !model.ValidAttackVector(*raw.AttackVector) {
		return nil, &ValidationError{Field: "attack_vector", Reason: fmt.Sprintf("unknown value %q", *raw.AttackVector)}
	}
	if raw.Severity != nil && !model.ValidSeverity(*raw.Severity) {
		zap.L().Warn("extraction: unknown severity, dropping", zap.String("severity", string(*raw.Severity)))
		raw.Severity = nil
	}

	return &raw, nil
}

// parseUpdateCheck validates the update-detection response. Only the three
// known labels are accepted.
func parseUpdateCheck(text string) (*model.UpdateCheck, error) {
	var raw struct {
		Classification  string  `json:"classification"`
		RelatedBreachID *string `json:"related_breach_id"`
		UpdateType      *string `json:"update_type"`
		UpdateSummary   *string `json:"update_summary"`
		Confidence      float64 `json:"confidence"`
		Reasoning       string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return nil, &ValidationError{Reason: "update detection is not valid JSON"}
	}

	label := model.UpdateLabel(strings.ToUpper(strings.TrimSpace(raw.Classification)))
	switch label {
	case model.LabelNewBreach, model.LabelGenuineUpdate, model.LabelDuplicateSource:
	default:
		return nil, &ValidationError{Field: "classification", Reason: fmt.Sprintf("unknown label %q", raw.Classification)}
	}

	check := &model.UpdateCheck{
		Label:      label,
		Confidence: clamp01(raw.Confidence),
		Reasoning:  raw.Reasoning,
		UpdateType: model.UpdateTypeNewInfo,
	}
	if raw.RelatedBreachID != nil {
		check.RelatedBreachID = strings.TrimSpace(*raw.RelatedBreachID)
	}
	if raw.UpdateSummary != nil {
		check.UpdateSummary = strings.TrimSpace(*raw.UpdateSummary)
	}
	if raw.UpdateType != nil {
		if ut := model.UpdateType(strings.ToLower(strings.TrimSpace(*raw.UpdateType))); model.ValidUpdateType(ut) {
			check.UpdateType = ut
		}
	}

	return check, nil
}

// RenderCandidates formats candidate breaches and their structural signal
// annotations for the update-detection prompt. The annotation is mandatory
// context: the model is told explicitly when comparable fields match or
// differ instead of being asked to re-derive that from prose.
func RenderCandidates(candidates []model.Breach, signals map[string]model.MatchSignal) string {
	if len(candidates) == 0 {
		return "No existing breaches in database."
	}

	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "- ID: %s\n", c.ID)
		fmt.Fprintf(&b, "  Company: %s\n", c.Company)
		fmt.Fprintf(&b, "  Discovery Date: %s\n", strOrUnknown(c.DiscoveryDate))
		if c.RecordsAffected != nil {
			fmt.Fprintf(&b, "  Records Affected: %d\n", *c.RecordsAffected)
		} else {
			b.WriteString("  Records Affected: Unknown\n")
		}
		if c.AttackVector != nil {
			fmt.Fprintf(&b, "  Attack Vector: %s\n", *c.AttackVector)
		} else {
			b.WriteString("  Attack Vector: Unknown\n")
		}
		fmt.Fprintf(&b, "  Summary: %s\n", truncate(c.Summary, 150))

		sig, ok := signals[c.ID]
		if !ok {
			b.WriteString("\n")
			continue
		}

		var parts []string
		if sig.RecordsMatch != nil {
			if *sig.RecordsMatch {
				parts = append(parts, fmt.Sprintf("records MATCH (%d approx equal to extracted)", deref(sig.CandidateRecords)))
			} else {
				parts = append(parts, fmt.Sprintf("records DIFFER (%d vs extracted)", deref(sig.CandidateRecords)))
			}
		}
		if sig.AttackVectorMatch != nil {
			vector := model.AttackVectorOther
			if sig.CandidateVector != nil {
				vector = *sig.CandidateVector
			}
			if *sig.AttackVectorMatch {
				parts = append(parts, fmt.Sprintf("attack_vector MATCH (%s)", vector))
			} else {
				parts = append(parts, fmt.Sprintf("attack_vector DIFFER (%s vs extracted)", vector))
			}
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, "  Structural signals: %s\n", strings.Join(parts, ", "))
			if sig.BothMatch() {
				b.WriteString("  -> High prior for DUPLICATE_SOURCE - only classify as GENUINE_UPDATE " +
					"if you can cite a specific new development not in the existing summary.\n")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func strOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return "Unknown"
	}
	return *s
}

func deref(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
