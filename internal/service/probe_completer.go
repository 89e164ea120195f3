package service

import (
	"context"
	"time"
)

// Probe calls use a higher temperature than generation calls so repeated
// checks of the same prompt sample different completions, and a modest
// token cap to bound cost per probe.
const (
	probeTemperature = 0.7
	probeMaxTokens   = 400
)

// ProbeCompleter adapts LLMClient to the visibility engine's Completer
// interface with probe-tuned call options.
type ProbeCompleter struct {
	client *LLMClient
}

// NewProbeCompleter wraps an LLM client for visibility probes.
func NewProbeCompleter(client *LLMClient) *ProbeCompleter {
	return &ProbeCompleter{client: client}
}

// Complete sends a probe prompt and returns the raw model reply.
func (p *ProbeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	result, err := p.client.Call(ctx, system, prompt, LLMCallOptions{
		Temperature: probeTemperature,
		MaxTokens:   probeMaxTokens,
		Timeout:     30 * time.Second,
		JSONMode:    true,
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}
