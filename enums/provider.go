package enums

type Provider string

const (
	ProviderInvalid Provider = ""

	// ProviderVideo is the highlight video search (YouTube).
	ProviderVideo Provider = "video"

	// ProviderPost is the discussion post search (Reddit).
	ProviderPost Provider = "post"
)

func (p Provider) Label() string {
	switch p {
	case ProviderVideo:
		return "Video"
	case ProviderPost:
		return "Posts"
	default:
		return "Unknown"
	}
}
