// internal/domain/distress/lexicon.go
package distress

// Entry is a single language-tagged phrase with a severity weight.
// Entries are loaded once at process start and never mutated.
type Entry struct {
	Phrase   string
	Language Language
	Weight   int
}

// Scoring constants. These are the documented cutoffs for this service
// (see DESIGN.md):
//
//   - phrase weights run 2 (mild) to 10 (explicit self-harm intent)
//   - total matched weight maps to MEDIUM at 4, HIGH at 7, CRITICAL at 10
//   - CRITICAL additionally requires a single matched phrase of weight
//     criticalPhraseWeight, so an accumulation of mild phrases saturates
//     at HIGH and a CRITICAL result always carries a critical indicator
const (
	minTextLength = 10 // runes; shorter texts short-circuit to the safe default

	mediumThreshold   = 4
	highThreshold     = 7
	criticalThreshold = 10

	criticalPhraseWeight = 10

	// minLanguageHits is the minimum raw hit count a language's lexicon
	// must score for that language to be selected during detection.
	minLanguageHits = 1

	// confidenceScale converts hit density (total weight / rune count)
	// into the [0,1] confidence value; the result is clamped at 1.
	confidenceScale = 4.0
)

// DefaultLexicon returns the built-in English and Lithuanian phrase lists.
// Phrases are stored pre-normalized (lowercase, no punctuation) so they can
// be matched directly against normalized input.
func DefaultLexicon() []Entry {
	return []Entry{
		// English: explicit self-harm intent
		{Phrase: "kill myself", Language: LanguageEnglish, Weight: 10},
		{Phrase: "end my life", Language: LanguageEnglish, Weight: 10},
		{Phrase: "end everything", Language: LanguageEnglish, Weight: 10},
		{Phrase: "want to die", Language: LanguageEnglish, Weight: 10},
		{Phrase: "suicide", Language: LanguageEnglish, Weight: 10},
		{Phrase: "better off dead", Language: LanguageEnglish, Weight: 10},
		{Phrase: "no reason to live", Language: LanguageEnglish, Weight: 10},
		// English: strong distress
		{Phrase: "hurt myself", Language: LanguageEnglish, Weight: 8},
		{Phrase: "self harm", Language: LanguageEnglish, Weight: 8},
		{Phrase: "cutting myself", Language: LanguageEnglish, Weight: 8},
		{Phrase: "hate my life", Language: LanguageEnglish, Weight: 7},
		{Phrase: "give up on everything", Language: LanguageEnglish, Weight: 7},
		{Phrase: "hopeless", Language: LanguageEnglish, Weight: 7},
		{Phrase: "worthless", Language: LanguageEnglish, Weight: 7},
		// English: moderate distress
		{Phrase: "depressed", Language: LanguageEnglish, Weight: 4},
		{Phrase: "anxious", Language: LanguageEnglish, Weight: 4},
		{Phrase: "panic attack", Language: LanguageEnglish, Weight: 4},
		{Phrase: "bullied", Language: LanguageEnglish, Weight: 4},
		{Phrase: "no friends", Language: LanguageEnglish, Weight: 4},
		{Phrase: "crying", Language: LanguageEnglish, Weight: 4},
		// English: mild signals
		{Phrase: "sad", Language: LanguageEnglish, Weight: 2},
		{Phrase: "lonely", Language: LanguageEnglish, Weight: 2},
		{Phrase: "tired of", Language: LanguageEnglish, Weight: 2},
		{Phrase: "worried", Language: LanguageEnglish, Weight: 2},
		{Phrase: "scared", Language: LanguageEnglish, Weight: 2},

		// Lithuanian: explicit self-harm intent
		{Phrase: "nusižudyti", Language: LanguageLithuanian, Weight: 10},
		{Phrase: "noriu mirti", Language: LanguageLithuanian, Weight: 10},
		{Phrase: "savižudybė", Language: LanguageLithuanian, Weight: 10},
		{Phrase: "nebenoriu gyventi", Language: LanguageLithuanian, Weight: 10},
		// Lithuanian: strong distress
		{Phrase: "žalotis", Language: LanguageLithuanian, Weight: 8},
		{Phrase: "skriausti save", Language: LanguageLithuanian, Weight: 8},
		{Phrase: "nekenčiu savo gyvenimo", Language: LanguageLithuanian, Weight: 7},
		{Phrase: "beviltiška", Language: LanguageLithuanian, Weight: 7},
		{Phrase: "pasiduodu", Language: LanguageLithuanian, Weight: 7},
		// Lithuanian: moderate distress
		{Phrase: "prislėgtas", Language: LanguageLithuanian, Weight: 4},
		{Phrase: "nerimas", Language: LanguageLithuanian, Weight: 4},
		{Phrase: "patyčios", Language: LanguageLithuanian, Weight: 4},
		{Phrase: "verkiu", Language: LanguageLithuanian, Weight: 4},
		{Phrase: "neturiu draugų", Language: LanguageLithuanian, Weight: 4},
		// Lithuanian: mild signals
		{Phrase: "liūdna", Language: LanguageLithuanian, Weight: 2},
		{Phrase: "vienišas", Language: LanguageLithuanian, Weight: 2},
		{Phrase: "pavargęs", Language: LanguageLithuanian, Weight: 2},
		{Phrase: "išsigandęs", Language: LanguageLithuanian, Weight: 2},
	}
}
