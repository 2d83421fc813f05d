package ux

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorWithSuggestion(t *testing.T) {
	base := errors.New("something broke")
	err := NewErrorWithSuggestion(base, "try again")

	if !strings.Contains(err.Error(), "something broke") {
		t.Errorf("expected original message, got: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "try again") {
		t.Errorf("expected suggestion, got: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped error to unwrap to the original")
	}
}

func TestNewErrorWithSuggestionNil(t *testing.T) {
	if err := NewErrorWithSuggestion(nil, "ignored"); err != nil {
		t.Errorf("expected nil for nil error, got: %v", err)
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantInside string
	}{
		{
			"missing config key",
			errors.New("config key not found: workflows.nightly.tasks.coadd.idsPerJob"),
			"dagforge validate",
		},
		{
			"missing platform file",
			errors.New(`platform file not found for "cluster" (searched: /etc/none)`),
			"dagforge platform list",
		},
		{
			"unresolved token",
			errors.New("task coadd: workerJob script: unresolved token $CAMERA at offset 12"),
			"keywords block",
		},
		{
			"undefined environment variable",
			errors.New("platform cluster: localScratch: undefined environment variable $SCRATCH"),
			"Export the named variable",
		},
		{
			"invalid chunk size",
			errors.New("invalid ids-per-job: 0"),
			"--ids-per-job",
		},
		{
			"phase parity",
			errors.New(`task coadd: node-set mismatch: NODE_SET resolves to "b" in postJob but "a" in preJob`),
			"preJob phase",
		},
		{
			"node set required",
			errors.New("platform cluster requires a node set: config key nodeSet is missing"),
			"--node-set",
		},
		{
			"path collision",
			errors.New("output path collision: /out/run claimed by tasks coadd and warp"),
			"distinct output path",
		},
		{
			"missing unit source",
			errors.New("task coadd: missing unit source: config key inputFile or totalUnits required"),
			"--id-file",
		},
		{
			"drift",
			errors.New("drift detected: 2 artifact(s) in /out differ from manifest"),
			"Regenerate",
		},
		{
			"manifest schema",
			errors.New(`unsupported schema "other/v9" (want "dagforge/manifest/v1")`),
			"incompatible version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)

			var withSuggestion *ErrorWithSuggestion
			if !errors.As(enhanced, &withSuggestion) {
				t.Fatalf("expected a suggestion for %q", tt.err.Error())
			}
			if !strings.Contains(withSuggestion.Suggestion, tt.wantInside) {
				t.Errorf("suggestion %q does not mention %q", withSuggestion.Suggestion, tt.wantInside)
			}
			if !errors.Is(enhanced, tt.err) {
				t.Error("enhanced error must unwrap to the original")
			}
		})
	}
}

func TestEnhanceErrorPassThrough(t *testing.T) {
	plain := errors.New("nothing the matcher knows")
	if got := EnhanceError(plain); got != plain {
		t.Errorf("unrecognized errors must pass through unchanged, got: %v", got)
	}
	if got := EnhanceError(nil); got != nil {
		t.Errorf("nil must stay nil, got: %v", got)
	}
}

func TestFormatError(t *testing.T) {
	base := errors.New("unresolved token $X at offset 0")
	err := FormatError(base, "rendering pre.sh")

	if !strings.Contains(err.Error(), "rendering pre.sh:") {
		t.Errorf("expected context prefix, got: %s", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped original error")
	}

	if got := FormatError(nil, "anything"); got != nil {
		t.Errorf("nil error must stay nil, got: %v", got)
	}
}
