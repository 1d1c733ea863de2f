package scraper_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscraper/internal/scraper"
)

const fullCard = `<li class="org-people-profile-card__profile-card-spacing">
  <div class="artdeco-entity-lockup">
    <a data-test-app-aware-link href="https://www.linkedin.com/in/jane-doe?miniProfileUrn=urn%3Ali%3Afs&amp;trk=people">
      <span class="visually-hidden">View profile</span>
    </a>
    <div class="artdeco-entity-lockup__title">
      <div class="lt-line-clamp--single-line">
        Jane&nbsp;Doe
        <span class="visually-hidden">Jane Doe's profile</span>
      </div>
    </div>
    <div class="artdeco-entity-lockup__subtitle">
      <div class="lt-line-clamp--multi-line">Head of Data; Platform team</div>
    </div>
  </div>
</li>`

const privateCard = `<li class="org-people-profile-card__profile-card-spacing">
  <div class="artdeco-entity-lockup">
    <div class="artdeco-entity-lockup__title">
      <div class="lt-line-clamp--single-line">LinkedIn Member</div>
    </div>
    <div class="artdeco-entity-lockup__subtitle">
      <div class="lt-line-clamp--multi-line">Engineer</div>
    </div>
  </div>
</li>`

func base(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("https://www.linkedin.com/company/acme/people/")
	require.NoError(t, err)
	return u
}

func TestExtractRecord_FullCard(t *testing.T) {
	rec, err := scraper.ExtractRecord(fullCard, base(t))
	require.NoError(t, err)

	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", rec.Link)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "Head of Data; Platform team", rec.Description)
}

func TestExtractRecord_RelativeLink(t *testing.T) {
	card := `<li><a data-test-app-aware-link href="/in/john?x=1">x</a>
<div class="artdeco-entity-lockup__title"><span class="lt-line-clamp--single-line">John</span></div>
<div class="artdeco-entity-lockup__subtitle"><span class="lt-line-clamp--multi-line">CTO</span></div></li>`

	rec, err := scraper.ExtractRecord(card, base(t))
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/john", rec.Link)
}

func TestExtractRecord_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"private profile without link", privateCard},
		{"anchor without href", `<li><a data-test-app-aware-link>x</a>
<div class="artdeco-entity-lockup__title"><span class="lt-line-clamp--single-line">A</span></div>
<div class="artdeco-entity-lockup__subtitle"><span class="lt-line-clamp--multi-line">B</span></div></li>`},
		{"no name", `<li><a data-test-app-aware-link href="/in/a">x</a>
<div class="artdeco-entity-lockup__subtitle"><span class="lt-line-clamp--multi-line">B</span></div></li>`},
		{"no description", `<li><a data-test-app-aware-link href="/in/a">x</a>
<div class="artdeco-entity-lockup__title"><span class="lt-line-clamp--single-line">A</span></div></li>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scraper.ExtractRecord(tt.html, base(t))
			require.ErrorIs(t, err, scraper.ErrMissingField)
		})
	}
}
