package fetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/skoeller/rankscrape/internal/types"
)

// consentSavePath is where the consent form posts its answer.
const consentSavePath = "/cookiewall/Save"

// IsCookieWall reports whether the page is the consent gate rather than the
// requested content.
func IsCookieWall(body []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return false
	}
	return consentForm(doc).Length() > 0
}

// consentForm finds the consent form by its action suffix.
func consentForm(doc *goquery.Document) *goquery.Selection {
	return doc.Find("form[action]").FilterFunction(func(_ int, form *goquery.Selection) bool {
		action, _ := form.Attr("action")
		return strings.HasSuffix(strings.ToLower(action), strings.ToLower(consentSavePath))
	}).First()
}

// consentReturnURL extracts the ReturnUrl hidden input from the wall page.
func consentReturnURL(doc *goquery.Document) (string, error) {
	form := consentForm(doc)
	if form.Length() == 0 {
		return "", types.ErrConsentFormNotFound
	}
	value, ok := form.Find(`input[name="ReturnUrl"]`).First().Attr("value")
	if !ok || value == "" {
		return "", types.ErrConsentReturnURL
	}
	return value, nil
}

// acceptCookies submits the consent form with all purposes accepted and
// re-fetches the page the wall was guarding.
func (f *HTTPFetcher) acceptCookies(ctx context.Context, wall *types.Response) (*types.Response, error) {
	doc, err := wall.Document()
	if err != nil {
		return nil, &types.FetchError{URL: wall.URL, Err: err}
	}

	returnURL, err := consentReturnURL(doc)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(wall.FinalURL)
	if err != nil {
		return nil, &types.FetchError{URL: wall.FinalURL, Err: err}
	}

	form := url.Values{
		"ReturnUrl":      {returnURL},
		"SettingsOpen":   {"false"},
		"CookiePurposes": {"1", "2", "4", "16"},
	}

	saveURL := base.ResolveReference(&url.URL{Path: consentSavePath})
	if _, err := f.doRetry(ctx, http.MethodPost, saveURL.String(), form); err != nil {
		return nil, err
	}

	ret, err := url.Parse(returnURL)
	if err != nil {
		return nil, &types.FetchError{URL: returnURL, Err: err}
	}

	f.logger.Debug("cookie wall accepted", "return_url", returnURL)
	return f.doRetry(ctx, http.MethodGet, base.ResolveReference(ret).String(), nil)
}
