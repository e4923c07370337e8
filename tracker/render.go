package tracker

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/kova98/footroll.api/data"
	"github.com/kova98/footroll.api/enums"
	"github.com/kova98/footroll.api/matchers"
	"github.com/kova98/footroll.api/models"
)

// PageSize is the number of results shown per message.
const PageSize = 5

//go:embed templates/*.tmpl
var templateFS embed.FS

var messageTemplates = template.Must(template.New("messages").Funcs(template.FuncMap{
	"esc":  EscapeHTML,
	"attr": escapeAttr,
}).ParseFS(templateFS, "templates/*.tmpl"))

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the characters Telegram's HTML parse mode requires.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(EscapeHTML(s), `"`, "&quot;")
}

// MinuteLabel formats the event minute as 45', 45+2' or N/A.
func MinuteLabel(ev models.FixtureEvent) string {
	if ev.Time.Elapsed == nil {
		return "N/A"
	}
	if ev.Time.Extra == nil || *ev.Time.Extra <= 0 {
		return fmt.Sprintf("%d'", *ev.Time.Elapsed)
	}
	return fmt.Sprintf("%d+%d'", *ev.Time.Elapsed, *ev.Time.Extra)
}

func EventEmoji(eventType, detail string) string {
	text := strings.ToLower(eventType + " " + detail)
	switch {
	case strings.Contains(text, "red card"):
		return "🟥"
	case strings.Contains(text, "card"):
		return "🟨"
	case strings.Contains(text, "goal"):
		return "⚽"
	case strings.Contains(text, "penalty"):
		return "🎯"
	case strings.Contains(text, "substitution"):
		return "🔁"
	case strings.Contains(text, "var"):
		return "🖥️"
	default:
		return "📣"
	}
}

// EventKey is the dedupe key of a raw event: every identifying field joined by "|",
// absent values rendered empty.
func EventKey(fixtureID int64, ev models.FixtureEvent) string {
	comments := ""
	if ev.Comments != nil {
		comments = *ev.Comments
	}
	return strings.Join([]string{
		strconv.FormatInt(fixtureID, 10),
		optInt(ev.Time.Elapsed),
		optInt(ev.Time.Extra),
		ev.Type,
		ev.Detail,
		optInt64(ev.Team.ID),
		optInt64(ev.Player.ID),
		optInt64(ev.Assist.ID),
		comments,
	}, "|")
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// NewMatchEvent maps a raw fixture event to the fields stored on a MatchEvent.
func NewMatchEvent(fixture models.LiveFixture, ev models.FixtureEvent) data.MatchEvent {
	return data.MatchEvent{
		DedupeKey:   EventKey(fixture.Fixture.ID, ev),
		FixtureID:   fixture.Fixture.ID,
		Home:        fixture.Teams.Home.Name,
		Away:        fixture.Teams.Away.Name,
		League:      fixture.League.Name,
		Country:     fixture.League.Country,
		MinuteLabel: MinuteLabel(ev),
		Team:        ev.Team.Name,
		Player:      ev.Player.Name,
		EventType:   ev.Type,
		EventDetail: ev.Detail,
	}
}

func RenderEventMessage(fixture models.LiveFixture, ev models.FixtureEvent) (string, error) {
	view := struct {
		Icon, League, Country, Home, Away string
		ScoreHome, ScoreAway              int
		Minute, Detail, Team, Status      string
		Player, Assist, Note              string
	}{
		Icon:      EventEmoji(ev.Type, ev.Detail),
		League:    orDefault(fixture.League.Name, "Unknown league"),
		Country:   orDefault(fixture.League.Country, "Unknown country"),
		Home:      orDefault(fixture.Teams.Home.Name, "Home"),
		Away:      orDefault(fixture.Teams.Away.Name, "Away"),
		ScoreHome: derefInt(fixture.Goals.Home),
		ScoreAway: derefInt(fixture.Goals.Away),
		Minute:    MinuteLabel(ev),
		Detail:    orDefault(ev.Detail, orDefault(ev.Type, "Match event")),
		Team:      orDefault(ev.Team.Name, "Unknown team"),
		Status:    orDefault(fixture.Fixture.Status.Short, "LIVE"),
		Player:    ev.Player.Name,
		Assist:    ev.Assist.Name,
	}
	if ev.Comments != nil {
		view.Note = *ev.Comments
	}

	return execute("event.tmpl", view)
}

// InitialKeyboard offers the two searches and skip.
func InitialKeyboard(eventID string) models.Keyboard {
	return models.Keyboard{
		{
			models.ActionButton("🎬 Video", token(enums.ActionSearchVideo, eventID)),
			models.ActionButton("💬 Posts", token(enums.ActionSearchPost, eventID)),
		},
		{models.ActionButton("⏭ Skip", token(enums.ActionSkip, eventID))},
	}
}

type resultView struct {
	Index     int
	Title     string
	URL       string
	Label     string
	Language  string
	Published string
}

type headerView struct {
	Icon, Home, Away, Detail, Minute string
	Provider                         string
}

func header(e data.MatchEvent, provider enums.Provider) headerView {
	return headerView{
		Icon:     EventEmoji(e.EventType, e.EventDetail),
		Home:     orDefault(e.Home, "Home"),
		Away:     orDefault(e.Away, "Away"),
		Detail:   orDefault(e.EventDetail, orDefault(e.EventType, "Match event")),
		Minute:   orDefault(e.MinuteLabel, "N/A"),
		Provider: strings.ToLower(providerNoun(provider)),
	}
}

func providerNoun(provider enums.Provider) string {
	if provider == enums.ProviderPost {
		return "Posts"
	}
	return "Videos"
}

// renderResults renders one page of cached results with pick and open buttons.
// The page is clamped to the available results.
func renderResults(e data.MatchEvent, provider enums.Provider, cache *data.ProviderCache, page int, detector *matchers.LanguageDetector, now time.Time) (string, models.Keyboard, error) {
	total := len(cache.Results)
	lastPage := (total - 1) / PageSize
	if page > lastPage {
		page = lastPage
	}
	if page < 0 {
		page = 0
	}
	from := page * PageSize
	to := min(from+PageSize, total)

	items := make([]resultView, 0, to-from)
	keyboard := make(models.Keyboard, 0, to-from+1)
	for i, r := range cache.Results[from:to] {
		n := from + i + 1
		items = append(items, resultView{
			Index:     n,
			Title:     r.Title,
			URL:       r.URL,
			Label:     r.Label,
			Language:  detector.Detect(r.Title),
			Published: age(r.PublishedAt, now),
		})
		keyboard = append(keyboard, []models.Button{
			models.ActionButton(fmt.Sprintf("✅ %d", n), token(pickAction(provider), e.ID, r.ExternalID)),
			models.LinkButton("🔗 Open", r.URL),
		})
	}

	controls := make([]models.Button, 0, 3)
	if page > 0 {
		controls = append(controls, models.ActionButton("◀️ Prev", token(moreAction(provider), e.ID, strconv.Itoa(page-1))))
	}
	if to < total || cache.NextToken != "" {
		controls = append(controls, models.ActionButton("More ▶️", token(moreAction(provider), e.ID, strconv.Itoa(page+1))))
	}
	controls = append(controls, models.ActionButton("⬅️ Back", token(enums.ActionBack, e.ID)))
	keyboard = append(keyboard, controls)

	h := header(e, provider)
	view := struct {
		headerView
		Provider        string
		From, To, Total int
		Items           []resultView
	}{
		headerView: h,
		Provider:   providerNoun(provider),
		From:       from + 1,
		To:         to,
		Total:      total,
		Items:      items,
	}

	text, err := execute("results.tmpl", view)
	return text, keyboard, err
}

func renderEmpty(e data.MatchEvent, provider enums.Provider) (string, models.Keyboard, error) {
	keyboard := models.Keyboard{{
		models.ActionButton("🔄 Retry", token(searchAction(provider), e.ID)),
		models.ActionButton("⬅️ Back", token(enums.ActionBack, e.ID)),
	}}

	text, err := execute("empty.tmpl", header(e, provider))
	return text, keyboard, err
}

func renderApproved(e data.MatchEvent, approval data.Approval) (string, error) {
	view := struct {
		Source, Home, Away, Minute, Detail, Player string
		URL, Title                                 string
	}{
		Source: strings.ToLower(approval.Source.Label()),
		Home:   orDefault(e.Home, "Home"),
		Away:   orDefault(e.Away, "Away"),
		Minute: orDefault(e.MinuteLabel, "N/A"),
		Detail: orDefault(e.EventDetail, orDefault(e.EventType, "Match event")),
		Player: e.Player,
		URL:    approval.URL,
		Title:  approval.Title,
	}
	return execute("approved.tmpl", view)
}

func execute(name string, view any) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func age(published, now time.Time) string {
	if published.IsZero() {
		return ""
	}
	d := now.Sub(published)
	switch {
	case d < 0:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
