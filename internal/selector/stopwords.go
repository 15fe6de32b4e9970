package selector

// Function words the manual strategy never blanks: guessing "that" or
// "would" teaches nothing.
var stopwords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"along": {}, "also": {}, "always": {}, "among": {}, "another": {},
	"anything": {}, "around": {}, "away": {}, "back": {}, "because": {},
	"been": {}, "before": {}, "behind": {}, "being": {}, "below": {},
	"between": {}, "both": {}, "came": {}, "cannot": {}, "come": {},
	"could": {}, "does": {}, "doing": {}, "done": {}, "down": {},
	"during": {}, "each": {}, "either": {}, "else": {}, "even": {},
	"ever": {}, "every": {}, "everything": {}, "from": {}, "gave": {},
	"give": {}, "goes": {}, "going": {}, "gone": {}, "have": {},
	"having": {}, "here": {}, "himself": {}, "herself": {}, "however": {},
	"into": {}, "itself": {}, "just": {}, "like": {}, "made": {},
	"make": {}, "many": {}, "more": {}, "most": {}, "much": {},
	"must": {}, "myself": {}, "neither": {}, "never": {}, "nothing": {},
	"once": {}, "only": {}, "onto": {}, "other": {}, "over": {},
	"perhaps": {}, "quite": {}, "rather": {}, "said": {}, "same": {},
	"shall": {}, "should": {}, "since": {}, "some": {}, "something": {},
	"somewhat": {}, "still": {}, "such": {}, "than": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "those": {}, "though": {}, "through": {},
	"thus": {}, "together": {}, "toward": {}, "under": {}, "until": {},
	"upon": {}, "very": {}, "well": {}, "went": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"whom": {}, "whose": {}, "will": {}, "with": {}, "within": {},
	"without": {}, "would": {}, "your": {}, "yours": {},
}

func isStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
