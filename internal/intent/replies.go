package intent

import "strings"

// Canned-reply tables. Each key maps to an ordered set of variants; the
// router picks one uniformly through its injected rand source. Slices
// keep the lookup order fixed, unlike a map.

type cannedReply struct {
	key      string
	variants []string
}

// Greetings match on equality or prefix of the utterance.
var greetingReplies = []cannedReply{
	{"hello", []string{"Hello! How can I help you?", "Hi there! What can I do for you?", "Hey! What's up?"}},
	{"hi", []string{"Hi! How are you doing?", "Hello! What's on your mind?", "Hey there!"}},
	{"hey", []string{"Hey! What do you need?", "What's up?", "Hi! How can I assist?"}},
	{"good morning", []string{"Good morning! Ready to help!", "Morning! Let's get started.", "Good morning! What's your plan?"}},
	{"good afternoon", []string{"Good afternoon! How can I help?", "Afternoon! What do you need?", "Good afternoon!"}},
	{"good evening", []string{"Good evening! What can I do?", "Evening! How are things?", "Good evening!"}},
	{"good night", []string{"Good night! Sleep well!", "Night! See you later!", "Good night! Rest well!"}},
}

// Casual and thanks tables match on containment anywhere in the
// utterance.
var casualReplies = []cannedReply{
	{"how are you", []string{"I'm doing great, thanks for asking!", "I'm functioning perfectly!", "All systems go!"}},
	{"what's up", []string{"Not much! Just ready to help. What do you need?", "Everything's good!", "Hey! What can I do for you?"}},
	{"who are you", []string{"I'm Ray, your voice assistant!", "I'm your AI assistant!", "Your friendly AI!"}},
}

var thanksReplies = []cannedReply{
	{"thank you", []string{"You're welcome! Happy to help.", "Anytime! Glad I could assist.", "My pleasure!"}},
	{"thanks", []string{"No problem! Anything else?", "Happy to help!", "You're welcome!"}},
}

func (r *Router) matchGreeting(q string) bool {
	return lookupGreeting(q) != nil
}

func lookupGreeting(q string) []string {
	for _, c := range greetingReplies {
		if q == c.key || strings.HasPrefix(q, c.key) {
			return c.variants
		}
	}
	return nil
}

func matchTableContains(table []cannedReply) func(string) bool {
	return func(q string) bool {
		for _, c := range table {
			if strings.Contains(q, c.key) {
				return true
			}
		}
		return false
	}
}

func lookupContains(table []cannedReply, q string) []string {
	for _, c := range table {
		if strings.Contains(q, c.key) {
			return c.variants
		}
	}
	return nil
}

func (r *Router) replyGreeting(q string) {
	r.say(r.pick(lookupGreeting(q)))
}

func (r *Router) replyCasual(q string) {
	r.say(r.pick(lookupContains(casualReplies, q)))
}

func (r *Router) replyThanks(q string) {
	r.say(r.pick(lookupContains(thanksReplies, q)))
}
