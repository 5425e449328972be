package mockapi

import (
	"net/http"

	"mindscape/internal/api"
	"mindscape/internal/journal"
)

var articles = []api.SupportResource{
	{ID: "art-sleep", Title: "Building a calming bedtime routine", Icon: "🌙", Category: "Sleep", Duration: "5 min read",
		Description: "<p>Small habits before bed, like <b>dimming screens</b> and a short wind-down, improve sleep quality.</p>"},
	{ID: "art-anxiety", Title: "Understanding anxiety", Icon: "🧠", Category: "Anxiety", Duration: "7 min read",
		Description: "<p>Anxiety is the body's alarm system. Learn to notice its signals and respond with care.</p>"},
	{ID: "art-gratitude", Title: "The science of gratitude", Icon: "🙏", Category: "Wellbeing", Duration: "4 min read",
		Description: "Writing down three good things each day can lift your mood over time."},
}

var techniques = []api.SupportResource{
	{ID: "tech-478", Title: "4-7-8 breathing", Icon: "🌬️", Duration: "2 min", Difficulty: "easy",
		Description: "Inhale for 4 seconds, hold for 7, exhale for 8. Repeat three to four times."},
	{ID: "tech-grounding", Title: "5-4-3-2-1 grounding", Icon: "🖐️", Duration: "3 min", Difficulty: "easy",
		Description: "Name five things you see, four you can touch, three you hear, two you smell and one you taste."},
	{ID: "tech-pmr", Title: "Progressive muscle relaxation", Icon: "💆", Duration: "10 min", Difficulty: "medium",
		Description: "Tense and release each muscle group from your toes to your forehead."},
}

var supportResources = []api.SupportResource{
	{ID: "res-hotline", Title: "Crisis support line", Icon: "📞", Category: "Support",
		Description: "If you are in immediate danger, contact your local emergency number or a crisis hotline."},
	{ID: "res-community", Title: "Peer support community", Icon: "🤝", Category: "Community",
		Description: "<p>Talk with others who understand what you are going through.</p>"},
}

var relaxVideos = []api.RelaxVideo{
	{ID: "vid-rain", Title: "Gentle rain for relaxation", URL: "https://www.youtube.com/watch?v=q76bMs-NwRk",
		Description: "Ten minutes of soft rain sounds."},
	{ID: "vid-ocean", Title: "Ocean waves", URL: "https://www.youtube.com/watch?v=bn9F19Hi1Lk",
		Description: "Waves on a quiet beach at sunset."},
	{ID: "vid-meditation", Title: "Guided 5 minute meditation", URL: "https://www.youtube.com/watch?v=inpok4MKVLM",
		Description: "<p>A short <em>guided</em> meditation for a calm mind.</p>"},
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	recent := s.emotionsOfLocked(currentEmail(r.Context()))
	s.mu.Unlock()

	// The anxiety article leads after a negative emotion
	res := api.PersonalizedResources{
		Articles:   append([]api.SupportResource(nil), articles...),
		Techniques: append([]api.SupportResource(nil), techniques...),
		Resources:  append([]api.SupportResource(nil), supportResources...),
	}
	if len(recent) > 0 {
		if mood, ok := journal.LookupMood(recent[0].EmotionType); ok && mood.Polarity == journal.Negative {
			res.Articles[0], res.Articles[1] = res.Articles[1], res.Articles[0]
		}
	}

	respond(w, http.StatusOK, res, "")
}

func (s *Server) handleRelaxVideos(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, api.RelaxVideos{
		Message: "Take a few minutes to breathe and relax.",
		Videos:  relaxVideos,
	}, "")
}
