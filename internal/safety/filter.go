// Package safety classifies free-text recipe requests as safe or unsafe
// before any LLM call, and again on the LLM's own output.
package safety

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// PublicMessage is the single message callers may show for any blocked
// request. The matched rule is deliberately never exposed, so a probing
// caller cannot enumerate the rule set.
const PublicMessage = "We cannot generate this type of content. Please request a recipe with appropriate, edible ingredients."

// Verdict is the result of evaluating a piece of text. The matched rule is
// internal; it is logged inside this package and never serialized.
type Verdict struct {
	Safe        bool
	matchedRule string
}

// blockedTerms are matched with word boundaries so that a blocked root
// inside a longer food word ("human" in a hypothetical "humanberry") cannot
// fire.
var blockedTerms = []string{
	// Human-related.
	"human", "person", "people", "flesh", "corpse", "blood", "organs", "brain", "cadaver",
	// Pets and companion animals.
	"dog", "cat", "puppy", "kitten", "pet",
	// Endangered or protected animals.
	"endangered", "elephant", "tiger", "lion", "whale", "dolphin", "panda",
	"gorilla", "chimpanzee", "orangutan", "monkey",
	// Toxic or poisonous substances.
	"poison", "toxic", "cyanide", "arsenic", "bleach", "detergent", "pesticide", "antifreeze",
	// Inedible materials.
	"plastic", "metal", "glass", "cardboard", "dirt", "gasoline",
	// Drugs and weapons.
	"drug", "cocaine", "heroin", "narcotic", "explosive", "gunpowder",
	// Insects and waste.
	"maggot", "cockroach", "urine", "feces", "vomit",
}

// blockedPhrases are multi-word patterns matched with whitespace tolerance.
var blockedPhrases = []string{
	`human\s+meat`,
	`eat\s+human`,
	`pet\s+meat`,
	`dog\s+meat`,
	`cat\s+meat`,
	`protected\s+species`,
	`rat\s+poison`,
}

// exceptions are legitimate food phrases that collide with a blocked root.
// They are stripped from the working copy before rule matching so a
// multi-word exception cannot be defeated by scanning its parts.
var exceptions = []string{
	"humanely raised",
	"human grade",
	"humane",
	"dogfish",
	"catnip",
	"tiger prawn",
	"tiger shrimp",
	"lion's mane",
	"monkey bread",
	"elephant ear",
	"bear claw",
	"hot dog",
	"corn dog",
}

// Filter evaluates text against the blocked-term and blocked-phrase rule
// sets. It is a pure function over strings; construction precompiles the
// patterns.
type Filter struct {
	logger       *zap.Logger
	exceptions   []string
	termPatterns map[string]*regexp.Regexp
	termOrder    []string
	phrases      map[string]*regexp.Regexp
	phraseOrder  []string
}

// New builds a Filter with the default rule set.
func New(logger *zap.Logger) *Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Filter{
		logger:       logger,
		exceptions:   exceptions,
		termPatterns: make(map[string]*regexp.Regexp, len(blockedTerms)),
		phrases:      make(map[string]*regexp.Regexp, len(blockedPhrases)),
	}
	for _, term := range blockedTerms {
		f.termPatterns[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		f.termOrder = append(f.termOrder, term)
	}
	for _, phrase := range blockedPhrases {
		f.phrases[phrase] = regexp.MustCompile(`\b` + phrase + `\b`)
		f.phraseOrder = append(f.phraseOrder, phrase)
	}
	return f
}

// Evaluate classifies the given text. Empty text is safe.
func (f *Filter) Evaluate(text string) Verdict {
	if strings.TrimSpace(text) == "" {
		return Verdict{Safe: true}
	}

	working := strings.ToLower(strings.TrimSpace(text))

	// Strip exception phrases before any rule matching.
	for _, exc := range f.exceptions {
		working = strings.ReplaceAll(working, exc, " ")
	}

	for _, term := range f.termOrder {
		if f.termPatterns[term].MatchString(working) {
			f.logger.Warn("blocked request", zap.String("rule", "term:"+term))
			return Verdict{Safe: false, matchedRule: "term:" + term}
		}
	}

	for _, phrase := range f.phraseOrder {
		if f.phrases[phrase].MatchString(working) {
			f.logger.Warn("blocked request", zap.String("rule", "phrase:"+phrase))
			return Verdict{Safe: false, matchedRule: "phrase:" + phrase}
		}
	}

	return Verdict{Safe: true}
}
