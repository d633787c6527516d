// Package ballot collects one vote per eligible voter and resolves the two
// tally rules the game uses: strict plurality for the discussion vote and
// a defendant-favoring majority for the survive/eliminate vote.
package ballot

import "errors"

var (
	ErrNotEligible  = errors.New("voter is not eligible for this ballot")
	ErrAlreadyVoted = errors.New("voter has already cast a vote")
	ErrClosed       = errors.New("ballot is closed")
)

// Decision values for the survive/eliminate ballot.
const (
	DecisionSurvive   = "SURVIVE"
	DecisionEliminate = "ELIMINATE"
)

// Ballot holds write-once votes from a set of eligible voters. It is not
// safe for concurrent use; the owning room serializes access.
type Ballot struct {
	eligible map[string]struct{}
	cast     map[string]string
	closed   bool
}

func New(eligibleVoterIDs []string) *Ballot {
	b := &Ballot{
		eligible: make(map[string]struct{}, len(eligibleVoterIDs)),
		cast:     make(map[string]string),
	}
	for _, id := range eligibleVoterIDs {
		b.eligible[id] = struct{}{}
	}
	return b
}

// Cast records choice for voterID. Each voter may vote exactly once;
// resubmission is an error, never an overwrite.
func (b *Ballot) Cast(voterID, choice string) error {
	if b.closed {
		return ErrClosed
	}
	if _, ok := b.eligible[voterID]; !ok {
		return ErrNotEligible
	}
	if _, ok := b.cast[voterID]; ok {
		return ErrAlreadyVoted
	}
	b.cast[voterID] = choice
	return nil
}

// HasVoted reports whether voterID has already cast a vote.
func (b *Ballot) HasVoted(voterID string) bool {
	_, ok := b.cast[voterID]
	return ok
}

// RemoveVoter drops a voter from both eligibility and any cast vote, for
// players who leave mid-ballot. Eligibility tracks present alive players,
// not a frozen snapshot, so a leave can retroactively complete the ballot.
func (b *Ballot) RemoveVoter(voterID string) {
	delete(b.eligible, voterID)
	delete(b.cast, voterID)
}

// RemoveTarget drops every cast vote naming targetID, reopening those
// voters' votes. Used when a vote target leaves mid-ballot: votes for an
// absent player must not decide the ballot.
func (b *Ballot) RemoveTarget(targetID string) {
	for voter, choice := range b.cast {
		if choice == targetID {
			delete(b.cast, voter)
		}
	}
}

// Complete reports whether every eligible voter has cast a vote.
func (b *Ballot) Complete() bool {
	return len(b.cast) >= len(b.eligible)
}

// Close freezes the ballot. Used for host force-closes; Cast fails afterwards.
func (b *Ballot) Close() {
	b.closed = true
}

// Votes returns the number of cast votes.
func (b *Ballot) Votes() int {
	return len(b.cast)
}

// Eligible returns the number of eligible voters.
func (b *Ballot) Eligible() int {
	return len(b.eligible)
}

// Result is the outcome of a discussion-vote tally.
type Result struct {
	WinnerID string
	Counts   map[string]int
	IsTie    bool
}

// Tally resolves the discussion vote. A candidate wins only with a strictly
// greater, non-zero count than every other candidate; a shared top count is
// a tie and produces no winner.
func (b *Ballot) Tally() Result {
	counts := make(map[string]int)
	for _, target := range b.cast {
		counts[target]++
	}

	res := Result{Counts: counts}
	top := 0
	topHolders := 0
	for id, n := range counts {
		switch {
		case n > top:
			top = n
			topHolders = 1
			res.WinnerID = id
		case n == top:
			topHolders++
		}
	}
	if top == 0 || topHolders > 1 {
		res.WinnerID = ""
		res.IsTie = topHolders > 1
	}
	return res
}

// FinalResult is the outcome of a survive/eliminate tally.
type FinalResult struct {
	Eliminate  int
	Survive    int
	Eliminated bool
}

// TallyDecision resolves the survive/eliminate vote. The accused is
// eliminated only if ELIMINATE votes strictly exceed SURVIVE votes; a tie
// defaults to survival.
func (b *Ballot) TallyDecision() FinalResult {
	var res FinalResult
	for _, choice := range b.cast {
		switch choice {
		case DecisionEliminate:
			res.Eliminate++
		case DecisionSurvive:
			res.Survive++
		}
	}
	res.Eliminated = res.Eliminate > res.Survive
	return res
}
