package completion

import "github.com/antlr4-go/antlr/v4"

// CandidatesCollection is the result of one candidate-engine invocation:
// the follow-up token hints for each reachable token, and the context path
// for each reachable preferred rule (spec.md §3).
type CandidatesCollection struct {
	// Tokens maps a token id to the sequence of token ids the engine found
	// immediately following it — used to tell a bare keyword from one
	// that starts a function call (followed by `(`).
	Tokens map[int][]int
	// Rules maps a preferred rule id to the call-stack path (rule ids,
	// outermost first) the engine walked to reach it.
	Rules map[int][]int
}

// ruleEndStatus is the set of token-list positions at which a rule
// invocation could end, keyed by position for O(1) membership tests.
type ruleEndStatus map[int]bool

// followSetWithPath is one alternative of a rule's follow set: the
// token interval reachable along that alternative, the rule path crossed
// to reach it, and (for ATOM transitions) the chain of tokens following
// it, used to build the "following tokens" hint.
type followSetWithPath struct {
	intervals *antlr.IntervalSet
	path      []int
	following []int
}

type followSetsHolder struct {
	sets     []followSetWithPath
	combined *antlr.IntervalSet
}

// CandidateEngine is the grammar-agnostic follow-set computation the
// candidate collector (C3) wraps. spec.md §1 declares it an external
// collaborator specified only by this interface; CodeCompletionCore below
// is this module's concrete implementation, since nothing else in the
// corpus supplies one.
type CandidateEngine interface {
	CollectCandidates(caretTokenIndex int, context antlr.ParserRuleContext) *CandidatesCollection
}

// CodeCompletionCore is a Go port of the ATN-based candidate-computation
// algorithm used by MySQL Workbench's CodeCompletionCore (and its
// antlr4-c3 relatives): it walks the ATN from a start rule, matching
// tokens already typed against transitions, and at the caret reports
// either a preferred-rule hit or the expanded token follow set. Grounded
// on the teacher's unfinished completion/c3.go port and on
// mysql-code-completion.cpp's use of it.
type CodeCompletionCore struct {
	parser antlr.Parser
	atn    *antlr.ATN

	IgnoredTokens  map[int]bool
	PreferredRules map[int]bool

	followSetsByRule map[int]followSetsHolder
	shortcutMap      map[int]map[int]ruleEndStatus
	candidates       *CandidatesCollection
	statesProcessed  int

	tokenStartIndex int
	tokens          []int
}

// NewCodeCompletionCore wires the engine to a live parser. Callers
// configure IgnoredTokens/PreferredRules afterwards (typically via a
// GrammarIDs binding through the candidate collector).
func NewCodeCompletionCore(parser antlr.Parser) *CodeCompletionCore {
	return &CodeCompletionCore{
		parser:           parser,
		atn:              parser.GetATN(),
		IgnoredTokens:    map[int]bool{},
		PreferredRules:   map[int]bool{},
		followSetsByRule: map[int]followSetsHolder{},
	}
}

// CollectCandidates runs the algorithm for one caret position and returns
// the resulting token/rule candidates. context, if non-nil, restricts the
// walk to that rule's subtree (e.g. when completion is only relevant
// within a sub-statement); nil starts from rule 0 (the grammar's root).
func (c *CodeCompletionCore) CollectCandidates(caretTokenIndex int, context antlr.ParserRuleContext) *CandidatesCollection {
	c.candidates = &CandidatesCollection{Tokens: map[int][]int{}, Rules: map[int][]int{}}
	c.shortcutMap = map[int]map[int]ruleEndStatus{}
	c.statesProcessed = 0

	if context != nil {
		c.tokenStartIndex = context.GetStart().GetTokenIndex()
	} else {
		c.tokenStartIndex = 0
	}

	c.tokens = nil
	tokenStream := c.parser.GetTokenStream()
	currentOffset := tokenStream.Index()
	tokenStream.Seek(c.tokenStartIndex)
	for offset := 1; ; offset++ {
		token := tokenStream.LT(offset)
		c.tokens = append(c.tokens, token.GetTokenType())
		if token.GetTokenIndex() >= caretTokenIndex || token.GetTokenType() == antlr.TokenEOF {
			break
		}
	}
	tokenStream.Seek(currentOffset)

	startRule := 0
	if context != nil {
		startRule = context.GetRuleIndex()
	}

	var callStack []int
	c.processRule(c.atn.GetRuleToStartState(startRule), 0, callStack)

	return c.candidates
}

// followSetsForRule computes (and memoizes) the set of follow alternatives
// for a rule, starting right after its start state and ending at its stop
// state.
func (c *CodeCompletionCore) followSetsForRule(ruleIndex int) followSetsHolder {
	if holder, ok := c.followSetsByRule[ruleIndex]; ok {
		return holder
	}

	start := c.atn.GetRuleToStartState(ruleIndex)
	stop := c.atn.GetRuleToStopState(ruleIndex)

	var sets []followSetWithPath
	seen := map[antlr.ATNState]bool{}
	var ruleStack []int
	c.collectFollowSets(start, stop, &sets, seen, &ruleStack)

	combined := antlr.NewIntervalSet()
	for _, s := range sets {
		combined.AddAll(s.intervals)
	}

	holder := followSetsHolder{sets: sets, combined: combined}
	c.followSetsByRule[ruleIndex] = holder
	return holder
}

// collectFollowSets performs a depth-first walk of the ATN from s,
// recording one followSetWithPath per non-epsilon transition reached
// (or an epsilon-only interval at the rule's stop state), grounded on the
// teacher's CollectFollowSets.
func (c *CodeCompletionCore) collectFollowSets(
	s antlr.ATNState,
	stopState antlr.ATNState,
	result *[]followSetWithPath,
	seen map[antlr.ATNState]bool,
	ruleStack *[]int,
) {
	if seen[s] {
		return
	}
	seen[s] = true

	if s == stopState || s.GetStateType() == antlr.ATNStateRuleStop {
		interval := antlr.NewIntervalSet()
		interval.AddInterval(antlr.NewInterval(antlr.TokenEpsilon, antlr.TokenEpsilon+1))
		*result = append(*result, followSetWithPath{
			intervals: interval,
			path:      append([]int{}, *ruleStack...),
			following: nil,
		})
		return
	}

	for _, transition := range s.GetTransitions() {
		switch transition.GetSerializationType() {
		case antlr.TransitionRULE:
			ruleTransition := transition.(*antlr.RuleTransition)
			target := ruleTransition.GetTarget().GetRuleIndex()
			if containsInt(*ruleStack, target) {
				continue
			}
			*ruleStack = append(*ruleStack, target)
			c.collectFollowSets(ruleTransition.GetFollowState(), stopState, result, seen, ruleStack)
			*ruleStack = (*ruleStack)[:len(*ruleStack)-1]
		case antlr.TransitionPRECEDENCE:
			predicate := transition.(*antlr.PredicateTransition)
			if c.checkPredicate(predicate) {
				c.collectFollowSets(transition.GetTarget(), stopState, result, seen, ruleStack)
			}
		default:
			if transition.GetIsEpsilon() {
				c.collectFollowSets(transition.GetTarget(), stopState, result, seen, ruleStack)
				continue
			}
			if transition.GetSerializationType() == antlr.TransitionWILDCARD {
				interval := antlr.NewIntervalSet()
				interval.AddInterval(antlr.NewInterval(antlr.TokenMinUserTokenType, c.atn.GetMaxTokenType()))
				*result = append(*result, followSetWithPath{
					intervals: interval,
					path:      append([]int{}, *ruleStack...),
					following: nil,
				})
				continue
			}
			set := transition.GetLabel()
			if set != nil && len(set.GetIntervals()) > 0 {
				if transition.GetSerializationType() == antlr.TransitionNOTSET {
					set = set.Complement(antlr.TokenMinUserTokenType, c.atn.GetMaxTokenType())
				}
				*result = append(*result, followSetWithPath{
					intervals: set,
					path:      append([]int{}, *ruleStack...),
					following: c.followingTokens(transition),
				})
			}
		}
	}
}

// followingTokens walks forward from transition's target collecting the
// chain of single-token ATOM transitions; any other transition, epsilon
// ones included, ends the walk on that path. Used to detect e.g. that a
// function-name keyword is immediately followed by `(`.
func (c *CodeCompletionCore) followingTokens(transition antlr.Transition) []int {
	var result []int
	pipeline := []antlr.ATNState{transition.GetTarget()}

	for len(pipeline) > 0 {
		state := pipeline[len(pipeline)-1]
		pipeline = pipeline[:len(pipeline)-1]

		for _, out := range state.GetTransitions() {
			if out.GetSerializationType() == antlr.TransitionATOM {
				label := out.GetLabel()
				if label != nil && intervalSetLength(label) == 1 {
					result = append(result, label.GetIntervals()[0].Start)
					pipeline = append(pipeline, out.GetTarget())
				}
			}
		}
	}

	return result
}

func (c *CodeCompletionCore) checkPredicate(t *antlr.PredicateTransition) bool {
	return t.GetPredicate().Evaluate(c.parser, antlr.ParserRuleContextEmpty)
}

// intervalSetLength returns the number of distinct values covered by set,
// mirroring antlr.IntervalSet's unexported length() via its exported
// GetIntervals/Interval.Length accessors.
func intervalSetLength(set *antlr.IntervalSet) int {
	total := 0
	for _, iv := range set.GetIntervals() {
		total += iv.Length()
	}
	return total
}

func containsInt(list []int, want int) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// stateAtPosition pairs an ATN state with the token-list index reached
// when control arrives there — the work-list item for the inner
// simulation loop in processRule.
type stateAtPosition struct {
	state antlr.ATNState
	index int
}

// processRule simulates matching startState's rule body against
// c.tokens[tokenListIndex:], recursing into called sub-rules and
// collecting candidates whenever simulation runs out of real input
// (reaches the caret). Returns the set of token-list positions at which
// the rule could be exited, so the caller can resume its own simulation
// from there. Grounded on the teacher's ProcessRule stub, completed per
// the documented antlr4-c3 algorithm.
func (c *CodeCompletionCore) processRule(startState antlr.ATNState, tokenListIndex int, callStack []int) ruleEndStatus {
	ruleIndex := startState.GetRuleIndex()

	if positions, ok := c.shortcutMap[ruleIndex]; ok {
		if status, ok2 := positions[tokenListIndex]; ok2 {
			return status
		}
	} else {
		c.shortcutMap[ruleIndex] = map[int]ruleEndStatus{}
	}

	result := ruleEndStatus{}
	setsHolder := c.followSetsForRule(ruleIndex)

	c.statesProcessed++

	atCaret := tokenListIndex >= len(c.tokens)-1

	if atCaret {
		if c.PreferredRules[ruleIndex] {
			path := append(append([]int{}, callStack...), ruleIndex)
			c.candidates.Rules[ruleIndex] = path
			result[tokenListIndex] = true
			c.shortcutMap[ruleIndex][tokenListIndex] = result
			return result
		}

		for _, set := range setsHolder.sets {
			for _, interval := range set.intervals.GetIntervals() {
				for symbol := interval.Start; symbol <= interval.Stop; symbol++ {
					if symbol == antlr.TokenEpsilon || c.IgnoredTokens[symbol] {
						continue
					}
					if existing, ok := c.candidates.Tokens[symbol]; !ok {
						c.candidates.Tokens[symbol] = set.following
					} else if !intSliceEqual(existing, set.following) {
						c.candidates.Tokens[symbol] = commonPrefix(existing, set.following)
					}
				}
			}
		}
		if setsHolder.combined.Contains(antlr.TokenEOF) {
			result[tokenListIndex] = true
		}
		c.shortcutMap[ruleIndex][tokenListIndex] = result
		return result
	}

	currentSymbol := c.tokens[tokenListIndex]
	if !setsHolder.combined.Contains(currentSymbol) {
		c.shortcutMap[ruleIndex][tokenListIndex] = result
		return result
	}

	callStack = append(callStack, ruleIndex)

	work := []stateAtPosition{{state: startState, index: tokenListIndex}}
	visited := map[stateAtPosition]bool{}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[item] {
			continue
		}
		visited[item] = true
		c.statesProcessed++

		if item.state.GetStateType() == antlr.ATNStateRuleStop {
			result[item.index] = true
			continue
		}

		for _, transition := range item.state.GetTransitions() {
			switch transition.GetSerializationType() {
			case antlr.TransitionRULE:
				ruleTransition := transition.(*antlr.RuleTransition)
				endStatus := c.processRule(ruleTransition.GetTarget(), item.index, callStack)
				for pos := range endStatus {
					work = append(work, stateAtPosition{state: ruleTransition.GetFollowState(), index: pos})
				}
			case antlr.TransitionPRECEDENCE:
				predicate := transition.(*antlr.PredicateTransition)
				if c.checkPredicate(predicate) {
					work = append(work, stateAtPosition{state: transition.GetTarget(), index: item.index})
				}
			default:
				if transition.GetIsEpsilon() {
					work = append(work, stateAtPosition{state: transition.GetTarget(), index: item.index})
					continue
				}
				if item.index >= len(c.tokens) {
					continue
				}
				set := transition.GetLabel()
				if transition.GetSerializationType() == antlr.TransitionNOTSET && set != nil {
					set = set.Complement(antlr.TokenMinUserTokenType, c.atn.GetMaxTokenType())
				}
				if set != nil && set.Contains(c.tokens[item.index]) {
					work = append(work, stateAtPosition{state: transition.GetTarget(), index: item.index + 1})
				}
			}
		}
	}

	c.shortcutMap[ruleIndex][tokenListIndex] = result
	return result
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func commonPrefix(a, b []int) []int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
