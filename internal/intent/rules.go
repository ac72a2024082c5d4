package intent

import (
	"fmt"
	"strings"
)

// rule pairs a match predicate over the normalized utterance with the
// handler that performs its side effects. The slice returned by
// buildRules is the priority order: it is part of the contract, and the
// dispatch loop in Route stops at the first hit.
type rule struct {
	name  string
	match func(q string) bool
	run   func(q string)
}

func (r *Router) buildRules() []rule {
	return []rule{
		{"listening.stop", containsAny("stop listening", "pause listening", "don't listen"), r.ackStopListening},
		{"listening.resume", func(q string) bool {
			return containsAny("resume listening", "start listening")(q) || q == "listen"
		}, r.ackResumeListening},
		{"session.exit", containsAny("close application", "close app", "exit application", "quit"), r.exitSession},
		{"open", hasPrefix("open "), r.openTarget},
		{"play", func(q string) bool {
			return strings.HasPrefix(q, "play ") &&
				(strings.Contains(q, "youtube") || !strings.Contains(q, "spotify"))
		}, r.playVideo},
		{"message", func(q string) bool {
			return hasPrefix("message ", "msg ", "whatsapp ")(q)
		}, r.sendMessage},
		{"whatsapp.bare", func(q string) bool {
			return q == "open whatsapp" || q == "whatsapp" || q == "start whatsapp"
		}, func(string) { r.openMessagingSurface("") }},
		{"greeting", r.matchGreeting, r.replyGreeting},
		{"casual", matchTableContains(casualReplies), r.replyCasual},
		{"thanks", matchTableContains(thanksReplies), r.replyThanks},
		{"time", func(q string) bool {
			return q == "time" || (strings.Contains(q, "time") &&
				(strings.Contains(q, "what") || strings.Contains(q, "tell")))
		}, r.tellTime},
		{"date", func(q string) bool {
			return q == "date" || (strings.Contains(q, "date") &&
				(strings.Contains(q, "what") || strings.Contains(q, "tell")))
		}, r.tellDate},
		{"echo", func(q string) bool {
			return hasPrefix("say ", "repeat ")(q) && echoText(q) != ""
		}, r.echo},
		{"battery", func(q string) bool {
			return strings.Contains(q, "battery") &&
				(strings.Contains(q, "status") || strings.Contains(q, "level"))
		}, r.batteryStatus},
		{"weather", func(q string) bool { return strings.Contains(q, "weather") }, r.weather},
		{"email", hasPrefix("send email", "email"), r.sendEmail},
	}
}

// predicate helpers

func containsAny(subs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range subs {
			if strings.Contains(q, s) {
				return true
			}
		}
		return false
	}
}

func hasPrefix(prefixes ...string) func(string) bool {
	return func(q string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(q, p) {
				return true
			}
		}
		return false
	}
}

// handlers

func (r *Router) ackStopListening(string) {
	r.say("Okay, I will stop listening.")
}

func (r *Router) ackResumeListening(string) {
	r.say("I'm listening again.")
}

func (r *Router) exitSession(string) {
	r.say("Closing the application. Goodbye.")
	r.cfg.Quit()
}

func (r *Router) openTarget(q string) {
	target := strings.TrimSpace(strings.TrimPrefix(q, "open "))
	if target == "" {
		r.say("What should I open?")
		return
	}

	// YouTube goes straight to its home surface.
	if target == "youtube" {
		if err := r.cfg.Launcher.OpenURL("https://www.youtube.com"); err != nil {
			r.cfg.Logger.Warn("open youtube failed", "err", err)
			r.say("I couldn't open YouTube")
			return
		}
		r.say("Opening youtube")
		return
	}

	// Websites shadow same-named local apps.
	if url, ok := r.cfg.Apps.ResolveWebsite(target); ok {
		if err := r.cfg.Launcher.OpenURL(url); err != nil {
			r.cfg.Logger.Warn("open website failed", "target", target, "err", err)
			r.say(fmt.Sprintf("I couldn't open %s", target))
			return
		}
		r.say(fmt.Sprintf("Opening %s", target))
		return
	}

	if path, ok := r.cfg.Apps.ResolveApp(target); ok {
		if err := r.cfg.Launcher.Start(path); err != nil {
			r.cfg.Logger.Warn("launch failed", "target", target, "path", path, "err", err)
			r.say(fmt.Sprintf("I couldn't open %s", target))
			return
		}
		r.say(fmt.Sprintf("Opening %s", target))
		return
	}

	r.say(fmt.Sprintf("I couldn't find %s on your system or as a website", target))
}

func (r *Router) playVideo(q string) {
	term := stripPlayQualifiers(q)
	if term == "" {
		r.say("Please tell me what to play on YouTube.")
		return
	}
	if r.cfg.Player == nil {
		r.say("I couldn't play that on YouTube.")
		return
	}
	confirmation, err := r.cfg.Player.PlayTopResult(term)
	if err != nil {
		r.cfg.Logger.Warn("video playback failed", "term", term, "err", err)
		r.say("I couldn't play that on YouTube.")
		return
	}
	r.say(confirmation)
}

// stripPlayQualifiers removes the verb and platform qualifier from a
// play request, leaving the search term.
func stripPlayQualifiers(q string) string {
	q = strings.TrimPrefix(q, "play ")
	q = strings.ReplaceAll(q, "on youtube", "")
	q = strings.ReplaceAll(q, "youtube", "")
	return strings.TrimSpace(q)
}

const whatsappUsageHint = "Please specify WhatsApp message in format: whatsapp to +1234567890 your message"

// sendMessage handles the messaging phrases. The "to <recipient> <body>"
// sub-form delivers through the messenger; every other form opens the
// messaging surface so the user can pick the contact manually.
func (r *Router) sendMessage(q string) {
	parts := strings.Fields(q)

	toIdx := -1
	for i, p := range parts {
		if p == "to" {
			toIdx = i
			break
		}
	}

	if len(parts) >= 4 && toIdx >= 0 {
		if toIdx+2 >= len(parts) {
			r.say(whatsappUsageHint)
			return
		}
		recipient := parts[toIdx+1]
		body := strings.Join(parts[toIdx+2:], " ")
		if r.cfg.Messenger == nil {
			r.say("I couldn't send the WhatsApp message.")
			return
		}
		if err := r.cfg.Messenger.SendDirectMessage(recipient, body); err != nil {
			r.cfg.Logger.Warn("direct message failed", "recipient", recipient, "err", err)
			r.say("I couldn't send the WhatsApp message.")
			return
		}
		r.say(fmt.Sprintf("WhatsApp message sent to %s.", recipient))
		return
	}

	name := q
	for _, p := range []string{"message ", "msg ", "whatsapp "} {
		name = strings.TrimPrefix(name, p)
	}
	r.openMessagingSurface(strings.TrimSpace(name))
}

// openMessagingSurface tries the desktop app first and falls back to the
// web client. A non-empty contact name only changes the spoken guidance;
// contact selection stays manual.
func (r *Router) openMessagingSurface(contact string) {
	guidance := ""
	if contact != "" {
		guidance = fmt.Sprintf(". Please search for %s in your contacts to start messaging", contact)
	}

	if path, ok := r.cfg.Apps.ResolveApp("whatsapp"); ok {
		if err := r.cfg.Launcher.Start(path); err == nil {
			r.say("Opening WhatsApp" + guidance)
			return
		}
		r.cfg.Logger.Warn("whatsapp desktop launch failed, trying web", "path", path)
	}

	if err := r.cfg.Launcher.OpenURL("https://web.whatsapp.com"); err != nil {
		r.cfg.Logger.Warn("whatsapp web open failed", "err", err)
		r.say("I couldn't open WhatsApp")
		return
	}
	r.say("Opening WhatsApp Web" + guidance)
}

func (r *Router) tellTime(string) {
	r.say("The time is " + r.cfg.Now().Format("03:04 PM"))
}

func (r *Router) tellDate(string) {
	r.say("Today is " + r.cfg.Now().Format("Monday, January 02, 2006"))
}

func echoText(q string) string {
	_, rest, ok := strings.Cut(q, " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}

func (r *Router) echo(q string) {
	r.say(echoText(q))
}

func (r *Router) batteryStatus(string) {
	if r.cfg.Battery == nil {
		r.say("Battery status feature is not available.")
		return
	}
	status, err := r.cfg.Battery.Status()
	if err != nil {
		r.cfg.Logger.Warn("battery status failed", "err", err)
		r.say("I couldn't get the battery status.")
		return
	}
	r.say(status)
}

func (r *Router) weather(q string) {
	location := weatherLocation(q)
	if r.cfg.Weather == nil {
		r.say("Weather feature is not available.")
		return
	}
	report, err := r.cfg.Weather.Report(location)
	if err != nil {
		r.cfg.Logger.Warn("weather lookup failed", "location", location, "err", err)
		r.say("I couldn't get the weather information.")
		return
	}
	r.say(report)
}

// weatherFiller lists the words dropped when extracting the location
// phrase from a weather query. Removal is whole-word: the original
// stripped "in" as a raw substring, which mangles names like Turin.
var weatherFiller = map[string]bool{
	"weather": true,
	"what's":  true,
	"what":    true,
	"is":      true,
	"the":     true,
	"in":      true,
	"for":     true,
	"of":      true,
}

// weatherLocation extracts the location phrase from a weather query. A
// comma splits "city, region", which are trimmed and recombined. An
// empty result means "use current IP-based location".
func weatherLocation(q string) string {
	var kept []string
	for _, w := range strings.Fields(q) {
		if weatherFiller[strings.Trim(w, ",")] {
			continue
		}
		kept = append(kept, w)
	}
	phrase := strings.TrimSpace(strings.Join(kept, " "))

	if city, region, ok := strings.Cut(phrase, ","); ok {
		city = strings.TrimSpace(city)
		region = strings.TrimSpace(region)
		if region != "" {
			return city + ", " + region
		}
		return city
	}
	return phrase
}

const emailUsageHint = "Please specify email in format: send email to recipient subject your subject body your message"

// sendEmail performs the strict structural parse: the literal tokens
// "to", "subject" and "body" must all be present in that relative
// order. A malformed request gets the usage hint and nothing is sent.
func (r *Router) sendEmail(q string) {
	parts := strings.Fields(q)

	toIdx, subjectIdx, bodyIdx := indexOf(parts, "to"), indexOf(parts, "subject"), indexOf(parts, "body")
	structured := len(parts) >= 5 &&
		toIdx >= 0 && subjectIdx > toIdx+1 && bodyIdx > subjectIdx+1 &&
		bodyIdx+1 < len(parts)
	if !structured {
		r.say(emailUsageHint)
		return
	}

	to := parts[toIdx+1]
	subject := strings.Join(parts[subjectIdx+1:bodyIdx], " ")
	body := strings.Join(parts[bodyIdx+1:], " ")

	if r.cfg.Mailer == nil {
		r.say("I couldn't send the email. Please check your email settings.")
		return
	}
	if err := r.cfg.Mailer.Send(to, subject, body); err != nil {
		r.cfg.Logger.Warn("email send failed", "to", to, "err", err)
		r.say("I couldn't send the email. Please check your email settings.")
		return
	}
	r.say(fmt.Sprintf("Email sent to %s with subject '%s'.", to, subject))
}

func indexOf(parts []string, tok string) int {
	for i, p := range parts {
		if p == tok {
			return i
		}
	}
	return -1
}
