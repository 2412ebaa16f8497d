package repository

import (
	"math"

	"github.com/hayart/web/internal/model"
)

// GraphQLレスポンスのノード型。WPGraphQLはnullを多用するため、
// 省略可能なフィールドはポインタで受けてモデル変換時に空文字列へ寄せる。

type featuredImageNode struct {
	Node *struct {
		SourceURL *string `json:"sourceUrl"`
	} `json:"node"`
}

func (f *featuredImageNode) url() string {
	if f == nil || f.Node == nil {
		return ""
	}
	return str(f.Node.SourceURL)
}

type eventNode struct {
	Title         *string            `json:"title"`
	Slug          string             `json:"slug"`
	Content       *string            `json:"content"`
	FeaturedImage *featuredImageNode `json:"featuredImage"`
	EventTypes    *struct {
		Nodes []struct {
			Name *string `json:"name"`
		} `json:"nodes"`
	} `json:"eventTypes"`
	EventDetails *struct {
		StartDateTime *string `json:"startDateTime"`
		EndDateTime   *string `json:"endDateTime"`
		Location      *string `json:"location"`
		PriceInfo     *string `json:"priceInfo"`
	} `json:"eventDetails"`
}

func (n eventNode) toModel() model.Event {
	ev := model.Event{
		Title:            str(n.Title),
		Slug:             n.Slug,
		FeaturedImageURL: n.FeaturedImage.url(),
	}
	if n.EventTypes != nil {
		for _, t := range n.EventTypes.Nodes {
			if name := str(t.Name); name != "" {
				ev.EventTypes = append(ev.EventTypes, name)
			}
		}
	}
	if d := n.EventDetails; d != nil {
		ev.Details = model.EventDetails{
			StartDateTime: str(d.StartDateTime),
			EndDateTime:   str(d.EndDateTime),
			Location:      str(d.Location),
			PriceInfo:     str(d.PriceInfo),
		}
	}
	return ev
}

type postNode struct {
	Title         *string            `json:"title"`
	Slug          string             `json:"slug"`
	Excerpt       *string            `json:"excerpt"`
	Content       *string            `json:"content"`
	Date          *string            `json:"date"`
	FeaturedImage *featuredImageNode `json:"featuredImage"`
}

func (n postNode) toModel() model.Post {
	return model.Post{
		Title:            str(n.Title),
		Slug:             n.Slug,
		Excerpt:          str(n.Excerpt),
		Date:             str(n.Date),
		FeaturedImageURL: n.FeaturedImage.url(),
	}
}

type pageNode struct {
	Title         *string            `json:"title"`
	Slug          string             `json:"slug"`
	Content       *string            `json:"content"`
	FeaturedImage *featuredImageNode `json:"featuredImage"`
}

type socialLinkNode struct {
	Title         *string `json:"title"`
	SocialDetails *struct {
		SocialURL *string `json:"socialUrl"`
		// ACFの数値フィールドはFloatとして公開される
		Order *float64 `json:"order"`
	} `json:"socialDetails"`
}

func (n socialLinkNode) toModel() model.SocialLink {
	link := model.SocialLink{Title: str(n.Title)}
	if d := n.SocialDetails; d != nil {
		link.URL = str(d.SocialURL)
		if d.Order != nil {
			order := int(math.Round(*d.Order))
			link.Order = &order
		}
	}
	return link
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
