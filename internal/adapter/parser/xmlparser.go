package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"strings"
	"time"

	"feedreader/internal/domain"

	"github.com/microcosm-cc/bluemonday"
)

// SnippetLength ограничивает длину текстового фрагмента записи в рунах.
const SnippetLength = 120

var ErrUnsupportedFormat = errors.New("unsupported feed format")

type rssXML struct {
	Channel channelXML `xml:"channel"`
}
type channelXML struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []itemXML `xml:"item"`
}
type itemXML struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Content     string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PubDate     string `xml:"pubDate"`
}

type atomXML struct {
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle"`
	Links    []atomLink  `xml:"link"`
	Entries  []entryAtom `xml:"entry"`
}
type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}
type entryAtom struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
}

type XMLParser struct {
	log      *slog.Logger
	sanitize *bluemonday.Policy
}

func NewXMLParser(log *slog.Logger) *XMLParser {
	return &XMLParser{
		log:      log,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Parse разбирает RSS 2.0 или Atom 1.0, формат определяется по корневому элементу.
func (p *XMLParser) Parse(ctx context.Context, reader io.Reader) (*domain.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	decoder := xml.NewDecoder(reader)
	for {
		tok, err := decoder.Token()
		if err != nil {
			p.log.Error("Error decoding XML", slog.Any("error", err))
			return nil, fmt.Errorf("failed to decode XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "rss":
			var rss rssXML
			if err := decoder.DecodeElement(&rss, &start); err != nil {
				p.log.Error("Error decoding XML", slog.Any("error", err))
				return nil, fmt.Errorf("failed to decode XML: %w", err)
			}
			return p.fromRSS(rss), nil
		case "feed":
			var atom atomXML
			if err := decoder.DecodeElement(&atom, &start); err != nil {
				p.log.Error("Error decoding XML", slog.Any("error", err))
				return nil, fmt.Errorf("failed to decode XML: %w", err)
			}
			return p.fromAtom(atom), nil
		default:
			return nil, fmt.Errorf("%w: root element <%s>", ErrUnsupportedFormat, start.Name.Local)
		}
	}
}

func (p *XMLParser) fromRSS(rss rssXML) *domain.Channel {
	channel := domain.Channel{
		Title:       strings.TrimSpace(rss.Channel.Title),
		Link:        strings.TrimSpace(rss.Channel.Link),
		Description: strings.TrimSpace(rss.Channel.Description),
		Items:       make([]domain.Item, 0, len(rss.Channel.Items)),
	}
	for _, itemDTO := range rss.Channel.Items {
		if strings.TrimSpace(itemDTO.Link) == "" {
			p.log.Warn("item has no link, skipping item", slog.String("item_title", itemDTO.Title))
			continue
		}
		pubDate := p.itemDate(itemDTO.PubDate, itemDTO.Title, parsePubDate)
		body := itemDTO.Description
		if body == "" {
			body = itemDTO.Content
		}
		channel.Items = append(channel.Items, domain.Item{
			Title:       strings.TrimSpace(itemDTO.Title),
			Link:        strings.TrimSpace(itemDTO.Link),
			Description: body,
			Snippet:     p.Snippet(body),
			PubDate:     pubDate,
		})
	}
	return &channel
}

func (p *XMLParser) fromAtom(atom atomXML) *domain.Channel {
	channel := domain.Channel{
		Title:       strings.TrimSpace(atom.Title),
		Link:        pickLink(atom.Links),
		Description: strings.TrimSpace(atom.Subtitle),
		Items:       make([]domain.Item, 0, len(atom.Entries)),
	}
	for _, e := range atom.Entries {
		stamp := e.Published
		if stamp == "" {
			stamp = e.Updated
		}
		link := pickLink(e.Links)
		if link == "" {
			p.log.Warn("entry has no link, skipping entry", slog.String("item_title", e.Title))
			continue
		}
		pubDate := p.itemDate(stamp, e.Title, func(v string) (time.Time, error) {
			return time.Parse(time.RFC3339, v)
		})
		body := e.Summary
		if body == "" {
			body = e.Content
		}
		channel.Items = append(channel.Items, domain.Item{
			Title:       strings.TrimSpace(e.Title),
			Link:        link,
			Description: body,
			Snippet:     p.Snippet(body),
			PubDate:     pubDate,
		})
	}
	return &channel
}

// itemDate разбирает дату записи. Дата необязательна: при ее отсутствии
// или ошибке разбора запись остается с нулевым PubDate.
func (p *XMLParser) itemDate(raw, title string, parse func(string) (time.Time, error)) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	pubDate, err := parse(raw)
	if err != nil {
		p.log.Warn("could not parse item date, keeping item undated",
			slog.String("pubDate", raw),
			slog.String("item_title", title),
			slog.Any("error", err),
		)
		return time.Time{}
	}
	return pubDate
}

// Snippet превращает HTML-описание в короткий текст без разметки.
func (p *XMLParser) Snippet(body string) string {
	text := html.UnescapeString(p.sanitize.Sanitize(body))
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return strings.TrimSpace(string(runes[:SnippetLength])) + "..."
}

func pickLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// parsePubDate пробует несколько распространенных форматов даты RSS.
func parsePubDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(dateStr)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date in any known format: %q", dateStr)
}
