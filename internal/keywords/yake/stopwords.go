package yake

// englishStopwords is the built-in stoplist.
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an",
	"and", "any", "are", "aren't", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "can't", "cannot",
	"could", "couldn't", "did", "didn't", "do", "does", "doesn't", "doing", "don't",
	"down", "during", "each", "else", "etc", "even", "ever", "every", "few", "for",
	"from", "further", "get", "gets", "got", "had", "hadn't", "has", "hasn't",
	"have", "haven't", "having", "he", "her", "here", "hers", "herself", "him",
	"himself", "his", "how", "however", "i", "if", "in", "into", "is", "isn't",
	"it", "it's", "its", "itself", "just", "let", "let's", "like", "made", "make",
	"many", "may", "me", "might", "more", "most", "much", "must", "mustn't", "my",
	"myself", "new", "no", "nor", "not", "now", "of", "off", "often", "on", "once",
	"one", "only", "or", "other", "ought", "our", "ours", "ourselves", "out",
	"over", "own", "per", "quite", "rather", "really", "said", "same", "say",
	"says", "see", "seen", "shall", "shan't", "she", "should", "shouldn't", "since",
	"so", "some", "such", "than", "that", "that's", "the", "their", "theirs",
	"them", "themselves", "then", "there", "there's", "these", "they", "they're",
	"this", "those", "though", "through", "thus", "to", "too", "two", "under",
	"until", "up", "upon", "us", "use", "used", "uses", "using", "very", "via",
	"was", "wasn't", "we", "we're", "well", "were", "weren't", "what", "when",
	"where", "whether", "which", "while", "who", "whom", "whose", "why", "will",
	"with", "within", "without", "won't", "would", "wouldn't", "yet", "you",
	"you're", "your", "yours", "yourself", "yourselves",
}
