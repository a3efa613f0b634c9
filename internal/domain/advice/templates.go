package advice

// fixTemplate holds the critical-moment wording for one reason family.
type fixTemplate struct {
	fallbackProblem string
	action          string
}

var fixTemplates = map[Category]fixTemplate{
	CategoryFast: {
		fallbackProblem: "You are speaking too fast here.",
		action:          "Re-record this 10-second section. Speak slower - aim for about 2-3 words per second. Take a breath after each important point.",
	},
	CategorySlow: {
		fallbackProblem: "You are speaking too slowly here.",
		action:          "Re-record this section with more energy. Speed up your talking - don't drag out your words. Remove long pauses.",
	},
	CategorySilence: {
		fallbackProblem: "There is a long awkward silence here.",
		action:          "Edit out this silence, OR fill it by saying something like 'Now, here's the important part...' or 'Let me explain...'",
	},
	CategoryEnergy: {
		fallbackProblem: "Your voice sounds flat and boring here.",
		action:          "Re-record this part. Stand up while recording, smile (it changes your voice!), and emphasize your important words by saying them louder or higher.",
	},
	CategoryFiller: {
		fallbackProblem: "You are saying um, uh, and like too many times.",
		action:          "Write out exactly what you want to say. Practice it 5 times. When you feel 'um' coming, just pause silently instead. Keep recording until you get zero filler words.",
	},
	CategoryComplexity: {
		fallbackProblem: "You are using words that are too complicated.",
		action:          "Rewrite this part using simple, everyday words. Add an example that people can relate to. If a 12-year-old wouldn't understand it, make it simpler.",
	},
	CategoryLength: {
		fallbackProblem: "This section is too long without any breaks.",
		action:          "Break this into smaller pieces. Say your main point (15 seconds), give an example (10 seconds), then pause for 2 seconds. Repeat.",
	},
	CategoryNone: {
		fallbackProblem: "Multiple issues detected here.",
		action:          "Re-record this 10-second section. Focus on: (1) More energy in your voice, (2) Simpler words, (3) Pausing between ideas. Fixing this will make the biggest difference.",
	},
}

// sectionTemplate holds the problematic-section wording for one family.
type sectionTemplate struct {
	title       string
	description string
}

var sectionTemplates = map[Category]sectionTemplate{
	CategoryFast: {
		title:       "You're Speaking Too Fast",
		description: "You're talking too quickly here. When you speak this fast, people can't keep up with what you're saying and they'll miss your important points.",
	},
	CategorySlow: {
		title:       "You're Speaking Too Slow",
		description: "You're talking too slowly here. When the pace is this slow, people get bored and their minds start to wander.",
	},
	CategorySilence: {
		title:       "Long Awkward Silence",
		description: "There's a long silence here. Pauses this long make people uncomfortable and break your flow.",
	},
	CategoryEnergy: {
		title:       "Your Voice Sounds Flat and Boring",
		description: "Your voice becomes flat and monotone here. When you sound bored, your audience feels bored too.",
	},
	CategoryFiller: {
		title:       "Too Many 'Um' and 'Uh' Words",
		description: "You're saying 'um', 'uh', and 'like' too many times here. This makes you sound nervous and unprepared.",
	},
	CategoryComplexity: {
		title:       "Using Words That Are Too Complicated",
		description: "You're using complicated words here. Most people won't understand what you mean - use simpler, everyday language instead.",
	},
	CategoryLength: {
		title:       "Talking Too Long Without a Break",
		description: "This section goes on too long without any breaks. People can't process this much information at once and they'll tune out.",
	},
	CategoryNone: {
		title: "Attention Risk Detected",
	},
}

// fallbacks fill the list up to the minimum, in order.
var fallbacks = [...]struct{ title, description string }{
	{
		title:       "Keep Practicing",
		description: "Your speech shows good fundamentals. Focus on consistency: Record yourself weekly, track your filler count and speaking pace, and gradually increase vocal variety.",
	},
	{
		title:       "Review Your Recording",
		description: "Listen back to the critical moment and the minute around it. Note where your attention would wander as a listener and rehearse that stretch again.",
	},
	{
		title:       "Plan Your Opening and Close",
		description: "Script the first and last 30 seconds. A strong start earns attention and a clear close tells the audience what to remember.",
	},
}
