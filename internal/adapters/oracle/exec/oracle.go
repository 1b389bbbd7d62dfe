// Package exec asks an external shuffler program for legality answers.
//
// The shuffler is invoked once per query:
//
//	<command> slot <pass> [hint]      prints the owning slot, or 0 when unknown
//	<command> legal <slot> [pass...]  prints true or false
//	<command> next <slot> [pass...]   prints one candidate pass per line
//	<command> default <slot>          prints the default template, one per line
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

var ErrUnavailable = errors.New("shuffler command unavailable")

type runFunc func(ctx context.Context, args ...string) (stdout string, stderr string, err error)

type Oracle struct {
	run runFunc
}

var _ ports.LegalityOracle = (*Oracle)(nil)

// NewOracle runs command (split on whitespace) for every query.
func NewOracle(command string) *Oracle {
	fields := strings.Fields(command)
	return &Oracle{run: func(ctx context.Context, args ...string) (string, string, error) {
		if len(fields) == 0 {
			return "", "", ErrUnavailable
		}
		return runShuffler(ctx, fields[0], append(fields[1:len(fields):len(fields)], args...)...)
	}}
}

func (o *Oracle) PassSlot(ctx context.Context, name string, hint domain.Slot) (domain.Slot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SlotNone, err
	}

	args := []string{"slot", name}
	if hint != domain.SlotNone {
		args = append(args, hint.String())
	}

	stdout, stderr, err := o.run(ctx, args...)
	if err != nil {
		return domain.SlotNone, formatError("slot", err, stderr)
	}

	answer := strings.TrimSpace(stdout)
	if answer == "" || answer == "0" {
		return domain.SlotNone, fmt.Errorf("%w %q", domain.ErrUnknownPass, name)
	}

	slot, err := domain.ParseSlot(answer)
	if err != nil {
		return domain.SlotNone, fmt.Errorf("shuffler slot: unexpected answer %q", answer)
	}

	return slot, nil
}

func (o *Oracle) SequenceIsLegal(ctx context.Context, sequence []string, slot domain.Slot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	stdout, stderr, err := o.run(ctx, append([]string{"legal", slot.String()}, sequence...)...)
	if err != nil {
		return false, formatError("legal", err, stderr)
	}

	legal, err := strconv.ParseBool(strings.TrimSpace(stdout))
	if err != nil {
		return false, fmt.Errorf("shuffler legal: unexpected answer %q", strings.TrimSpace(stdout))
	}

	return legal, nil
}

func (o *Oracle) CandidateNextActions(ctx context.Context, sequence []string, slot domain.Slot) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout, stderr, err := o.run(ctx, append([]string{"next", slot.String()}, sequence...)...)
	if err != nil {
		return nil, formatError("next", err, stderr)
	}

	return lines(stdout), nil
}

func (o *Oracle) DefaultSequence(ctx context.Context, slot domain.Slot) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout, stderr, err := o.run(ctx, "default", slot.String())
	if err != nil {
		return nil, formatError("default", err, stderr)
	}

	return lines(stdout), nil
}

func runShuffler(ctx context.Context, name string, args ...string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate shuffler command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func lines(out string) []string {
	result := []string{}
	for _, line := range strings.Split(out, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func formatError(op string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("shuffler %s: %w", op, err)
	}

	return fmt.Errorf("shuffler %s: %w: %s", op, err, stderr)
}
