package router

import "regexp"

// PatternVersion identifies the classification pattern set. Scoring
// rules and thresholds are data here, not control flow, so they can be
// tuned and the version bumped without touching Classify.
const PatternVersion = "lexical/v1"

// trivialPatterns are strict anchored matches for intents that never
// justify a large model: greetings, lookups, short date questions.
var trivialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey|thanks|thank you|ok|okay|yes|no|bye|sure|great|cool|nice|got it)[\s!.?]*$`),
	regexp.MustCompile(`^what is (a |an |the )?\w+\?*$`),
	regexp.MustCompile(`^who is \w+\?*$`),
	regexp.MustCompile(`^when (was|is|did) .{0,20}\?*$`),
	regexp.MustCompile(`^define \w+\?*$`),
}

// topicPatterns each add one point to the complexity score. They are
// scanned independently, not first-match-wins: a message asking to
// "explain the tradeoffs" scores on both the analysis and comparison
// rows.
var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(explain|analyze|compare|evaluate|implement|architect|design|optimize)\b`),
	regexp.MustCompile(`\b(write|create|build|generate|develop)\b.{10,}`),
	regexp.MustCompile(`\b(why|how does|how do|what are the implications|how would)\b`),
	regexp.MustCompile(`\bcode\b|\bprogram\b|\balgorithm\b|\bfunction\b|\bclass\b`),
	regexp.MustCompile(`\b(pros and cons|advantages|disadvantages|tradeoffs|difference between)\b`),
	regexp.MustCompile(`\b(research|thesis|essay|report|architecture|system design)\b`),
	regexp.MustCompile(`\b(transformer|neural network|machine learning|deep learning|llm|gpt)\b`),
	regexp.MustCompile(`\b(fastapi|react|nextjs|database|redis|postgresql|docker)\b`),
	regexp.MustCompile(`\b(step by step|in detail|comprehensive|thorough|detailed)\b`),
}

// codeMarkers are substrings whose presence means the message carries
// code: fenced blocks, definition keywords, arrow/return-type syntax.
var codeMarkers = []string{"```", "def ", "class ", "->"}
