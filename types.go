package wanderlust

// DataVersion is the compiled-in version tag for locally persisted
// snapshots. Bumping it invalidates every previously stored local
// snapshot and forces a reset to the default seed.
const DataVersion = "3"

type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
)

// Block is one ordered content unit of an item. For text blocks Content
// is prose, for image blocks it is a URL or an embedded data URI.
type Block struct {
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

// ContentItem is the unified trip/recipe record. Location is populated
// for trips, Country for recipes; the editor keeps them mutually
// exclusive.
type ContentItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Date       string  `json:"date,omitempty"`
	Location   string  `json:"location,omitempty"`
	Country    string  `json:"country,omitempty"`
	CoverImage string  `json:"coverImage,omitempty"`
	Blocks     []Block `json:"blocks"`
}

func (i ContentItem) Clone() ContentItem {
	out := i
	if i.Blocks != nil {
		out.Blocks = append([]Block{}, i.Blocks...)
	}
	return out
}

// Collection maps item id to item. Insertion order is irrelevant,
// consumers re-sort by date.
type Collection map[string]ContentItem

func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, item := range c {
		out[id] = item.Clone()
	}
	return out
}

// AppData is the root aggregate. It is persisted and synced as one unit.
type AppData struct {
	Trips   Collection `json:"trips"`
	Recipes Collection `json:"recipes"`
}

func (d AppData) Clone() AppData {
	return AppData{
		Trips:   d.Trips.Clone(),
		Recipes: d.Recipes.Clone(),
	}
}

type Field string

const (
	FieldTitle    Field = "title"
	FieldDate     Field = "date"
	FieldLocation Field = "location"
	FieldCountry  Field = "country"
)

// Kind discriminates the two collections and carries the required-field
// policy of each as data instead of branching at call sites.
type Kind struct {
	Name     string
	Required []Field
}

var (
	KindTrip   = Kind{Name: "trip", Required: []Field{FieldTitle, FieldDate, FieldLocation}}
	KindRecipe = Kind{Name: "recipe", Required: []Field{FieldTitle, FieldCountry}}
)

func KindByName(name string) (Kind, bool) {
	switch name {
	case KindTrip.Name:
		return KindTrip, true
	case KindRecipe.Name:
		return KindRecipe, true
	default:
		return Kind{}, false
	}
}

// Collection returns the collection of this kind inside data,
// allocating it when nil.
func (k Kind) Collection(data *AppData) Collection {
	switch k.Name {
	case KindRecipe.Name:
		if data.Recipes == nil {
			data.Recipes = Collection{}
		}
		return data.Recipes
	default:
		if data.Trips == nil {
			data.Trips = Collection{}
		}
		return data.Trips
	}
}

func (k Kind) field(item ContentItem, f Field) string {
	switch f {
	case FieldTitle:
		return item.Title
	case FieldDate:
		return item.Date
	case FieldLocation:
		return item.Location
	case FieldCountry:
		return item.Country
	default:
		return ""
	}
}

// Validate checks the required-field policy of the kind.
func (k Kind) Validate(item ContentItem) error {
	for _, f := range k.Required {
		if k.field(item, f) == "" {
			return ValidationError{Kind: k.Name, Field: string(f)}
		}
	}
	return nil
}

// Normalize clears the field belonging to the other kind, keeping the
// trip/recipe split mutually exclusive.
func (k Kind) Normalize(item *ContentItem) {
	if k.Name == KindTrip.Name {
		item.Country = ""
	} else {
		item.Location = ""
	}
}

type ValidationError struct {
	Kind  string
	Field string
}

func (e ValidationError) Error() string {
	return e.Kind + " is missing required field " + e.Field
}

// Event signals a content mutation to realtime subscribers.
type Event struct {
	Type string `json:"type"` // upsert, remove
	Kind string `json:"kind"`
	ID   string `json:"id"`
}
