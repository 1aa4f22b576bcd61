package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
)

const (
	TranslationFailed = "Translation failed. Make sure the language code is valid. If this persists, the issue is internal."

	DefaultTranslateTimeout = 2500 * time.Millisecond
	// kept free for the reply itself after the provider answers
	replyMargin = 250 * time.Millisecond
)

type TranslateService struct {
	tr      Translator
	timeout time.Duration
}

func NewTranslateService(tr Translator, timeout time.Duration) *TranslateService {
	if timeout <= 0 {
		timeout = DefaultTranslateTimeout
	}
	return &TranslateService{tr: tr, timeout: timeout}
}

func (s *TranslateService) Commands() []dispatch.Descriptor {
	return []dispatch.Descriptor{{
		Name:        "translate",
		Description: "Translate a message",
		Params: []dispatch.Param{
			{Name: "text", Description: "Text you want to translate", Type: dispatch.ParamString, Required: true, MaxLength: 2000},
			{Name: "target_lang", Description: "Target language code (e.g. en, pt, fr, es)", Type: dispatch.ParamString, Required: true, MaxLength: 35},
		},
		Handler: s.translate,
	}}
}

func (s *TranslateService) translate(ctx context.Context, ix *dispatch.Interaction) error {
	text := ix.Args.String("text")
	code := strings.TrimSpace(ix.Args.String("target_lang"))

	tag, err := language.Parse(code)
	if err == nil && tag == language.Und {
		err = fmt.Errorf("undetermined language %q", code)
	}
	if err != nil {
		ix.Log.Info("invalid target language", "code", code, "err", err)
		return ix.Response.SendPrimary(ctx, TranslationFailed, true)
	}
	target := tag.String()

	timeout := s.timeout
	if left := ix.Response.Remaining() - replyMargin; left < timeout {
		timeout = left
	}
	if timeout <= 0 {
		ix.Log.Warn("no time left to call the translator", "remaining", ix.Response.Remaining())
		return ix.Response.SendPrimary(ctx, TranslationFailed, true)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := s.tr.Translate(callCtx, text, target)
	if err != nil {
		ix.Log.Warn("translation failed", "target", target, "err", err)
		return ix.Response.SendPrimary(ctx, TranslationFailed, true)
	}
	return ix.Response.SendPrimary(ctx, fmt.Sprintf("**Translated (%s):**\n%s", strings.ToUpper(target), out), false)
}
