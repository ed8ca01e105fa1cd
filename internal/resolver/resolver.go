package resolver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dupetrack/internal/policy"
	"dupetrack/pkg/models"

	"github.com/sirupsen/logrus"
)

// Outcome is how a single duplicate group ended
type Outcome string

const (
	OutcomeResolved     Outcome = "resolved"
	OutcomeDidNothing   Outcome = "did_nothing"
	OutcomeInvalidInput Outcome = "invalid_input"
	OutcomeOutOfRange   Outcome = "out_of_range"
	OutcomeInputClosed  Outcome = "input_closed"
)

// Auditor records confirmed deletions
type Auditor interface {
	Record(key, deletedPath, retainedPath string) error
}

// GroupResult describes what happened to one duplicate group
type GroupResult struct {
	Key      string
	Outcome  Outcome
	Retained string
	Deleted  []string
	Declined []string
	Failed   []string
}

// Report summarizes a resolution run
type Report struct {
	Groups          []GroupResult
	Deleted         int
	BytesFreed      uint64
	PossibleSavings uint64
	Errors          []error
}

// Resolver walks the operator through every duplicate group, one at a time
type Resolver struct {
	in     *bufio.Reader
	out    io.Writer
	audit  Auditor
	remove func(string) error
	policy policy.Policy
	logger *logrus.Logger
}

// NewResolver creates a resolver that reads answers from in, writes prompts
// to out and records deletions to auditor. p decides what a failed delete
// does to the rest of the run.
func NewResolver(in io.Reader, out io.Writer, auditor Auditor, p policy.Policy, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{
		in:     bufio.NewReader(in),
		out:    out,
		audit:  auditor,
		remove: os.Remove,
		policy: p,
		logger: logger,
	}
}

// Resolve processes every group with two or more members in lexicographic
// fingerprint order. Under the abort policy the first failed delete stops
// the run; the partial report is returned alongside the error.
func (r *Resolver) Resolve(groups models.Groups) (*Report, error) {
	dups := groups.Duplicates()
	keys := dups.Keys()

	report := &Report{PossibleSavings: dups.PossibleSavings()}
	errs := policy.NewCollector(r.policy)

	for i, key := range keys {
		result, err := r.resolveGroup(i+1, len(keys), key, dups[key], errs, report)
		report.Groups = append(report.Groups, result)
		if err != nil {
			report.Errors = errs.Errors()
			return report, err
		}
	}

	report.Errors = errs.Errors()
	return report, nil
}

func (r *Resolver) resolveGroup(index, total int, key string, members []models.TrackMetadata, errs *policy.Collector, report *Report) (GroupResult, error) {
	result := GroupResult{Key: key}
	logger := r.logger.WithField("key", key)

	r.present(index, total, key, members)

	choice, outcome, err := r.selection(len(members))
	if outcome != OutcomeResolved {
		result.Outcome = outcome
		fields := logrus.Fields{"outcome": outcome}
		if err != nil {
			fields["error"] = err.Error()
		}
		logger.WithFields(fields).Info("Group left untouched")
		fmt.Fprintln(r.out, "\t[STA] Did nothing.")
		return result, nil
	}

	retained := members[choice-1]
	result.Outcome = OutcomeResolved
	result.Retained = retained.Path

	for i, member := range members {
		if i == choice-1 {
			continue
		}

		if !r.confirm(member) {
			result.Declined = append(result.Declined, member.Path)
			continue
		}

		fmt.Fprintf(r.out, "[DEL] Delete %s\n", member.Path)
		if err := r.remove(member.Path); err != nil {
			err = fmt.Errorf("delete %s: %w", member.Path, err)
			result.Failed = append(result.Failed, member.Path)
			if fatal := errs.Handle(err); fatal != nil {
				return result, fatal
			}
			logger.WithError(err).WithField("policy", r.policy).Warn("Delete failed, continuing")
			continue
		}

		// A deletion that cannot be audited always ends the run
		if err := r.audit.Record(key, member.Path, retained.Path); err != nil {
			return result, err
		}

		result.Deleted = append(result.Deleted, member.Path)
		report.Deleted++
		report.BytesFreed += member.SizeBytes

		logger.WithFields(logrus.Fields{
			"deleted":  member.Path,
			"retained": retained.Path,
		}).Info("Deleted duplicate")
	}

	fmt.Fprintln(r.out, "[STA] Duplicate handled.")
	return result, nil
}

func (r *Resolver) present(index, total int, key string, members []models.TrackMetadata) {
	fmt.Fprintf(r.out, "==== HANDLE DUPLICATE: %s ===\n", key)
	fmt.Fprintf(r.out, "(%d/%d) Duplicate tracks:\n", index, total)
	for i, m := range members {
		fmt.Fprintf(r.out, "%d. Track name: %s\n", i+1, m.Title)
		fmt.Fprintf(r.out, "   Album: %s\n", m.Album)
		fmt.Fprintf(r.out, "   Artist: %s\n", m.Artist)
		fmt.Fprintf(r.out, "   Path: %s\n", m.Path)
		fmt.Fprintf(r.out, "   Bitrate: %d\n", m.BitrateKbps)
		fmt.Fprintf(r.out, "   Track number: %d\n", m.TrackNumber)
	}

	fmt.Fprintln(r.out, "Select an option:")
	for i := 1; i <= len(members); i++ {
		fmt.Fprintf(r.out, "%d. Keep track %d\n", i, i)
	}
	fmt.Fprintf(r.out, "%d. Do nothing\n", len(members)+1)
}

// selection reads the menu answer. Anything other than a member index
// leaves the group untouched.
func (r *Resolver) selection(members int) (int, Outcome, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, OutcomeInputClosed, err
	}

	choice, err := strconv.Atoi(line)
	switch {
	case err != nil:
		return 0, OutcomeInvalidInput, err
	case choice == members+1:
		return 0, OutcomeDidNothing, nil
	case choice < 1 || choice > members+1:
		return 0, OutcomeOutOfRange, fmt.Errorf("selection %d outside 1..%d", choice, members+1)
	default:
		return choice, OutcomeResolved, nil
	}
}

// confirm asks whether to delete one member. An empty answer or "y" means
// yes; closed input means no.
func (r *Resolver) confirm(m models.TrackMetadata) bool {
	fmt.Fprintf(r.out, "[REQ] Delete file %s of %d kbps? (y/n)\n", m.Path, m.BitrateKbps)

	answer, err := r.readLine()
	if err != nil {
		r.logger.WithError(err).WithField("filePath", m.Path).Warn("No answer, keeping file")
		return false
	}
	return answer == "" || strings.EqualFold(answer, "y")
}

func (r *Resolver) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
