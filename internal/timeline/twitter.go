package timeline

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"styleprint/internal/models"
	"styleprint/internal/textutil"
)

// TwitterCredentials holds the four OAuth1 keys the reference system
// reads from config (twitter_consumer_key/secret,
// twitter_access_token/secret).
type TwitterCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// TwitterSource fetches a user's timeline over the standard v1.1 REST
// endpoint, signing each request with OAuth1 (HMAC-SHA1) by hand: no
// OAuth1 client exists anywhere in the retrieval pack, and hand-signing
// a handful of request parameters for one endpoint is within stdlib's
// normal remit for a thin external-facing adapter.
type TwitterSource struct {
	creds      TwitterCredentials
	httpClient *http.Client
	baseURL    string
}

// NewTwitterSource returns a TwitterSource whose HTTP client times out
// each request after 30 seconds.
func NewTwitterSource(creds TwitterCredentials) *TwitterSource {
	return &TwitterSource{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.twitter.com/1.1/statuses/user_timeline.json",
	}
}

type twitterStatus struct {
	ID        uint64 `json:"id"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
	User      struct {
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
		ID         uint64 `json:"id"`
	} `json:"user"`
}

func (t *TwitterSource) Fetch(ctx context.Context, handle string, sinceID, maxID uint64, pageSize int) (Page, error) {
	params := url.Values{}
	params.Set("screen_name", handle)
	params.Set("count", strconv.Itoa(pageSize))
	params.Set("include_rts", "false")
	params.Set("exclude_replies", "true")
	params.Set("tweet_mode", "extended")
	if sinceID > 0 {
		params.Set("since_id", strconv.FormatUint(sinceID, 10))
	}
	if maxID > 0 {
		params.Set("max_id", strconv.FormatUint(maxID, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Authorization", t.authHeader(http.MethodGet, t.baseURL, params))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return Page{}, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Page{}, fmt.Errorf("timeline: twitter returned %d: %s", resp.StatusCode, string(body))
	}

	var statuses []twitterStatus
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		return Page{}, fmt.Errorf("timeline: decode response: %w", err)
	}

	items := make([]models.Item, 0, len(statuses))
	var minID uint64
	for i, s := range statuses {
		createdTS, _ := time.Parse(time.RubyDate, s.CreatedAt)
		items = append(items, models.Item{
			ItemID:       s.ID,
			Handle:       textutil.CaseFold(handle),
			AuthorName:   s.User.Name,
			AuthorID:     s.User.ID,
			CreatedTS:    createdTS.Unix(),
			CreatedStr:   s.CreatedAt,
			RawText:      s.Text,
			PolishedText: textutil.Polish(s.Text),
		})
		if i == 0 || s.ID < minID {
			minID = s.ID
		}
	}

	var nextMax uint64
	if len(items) > 0 && minID > 0 {
		nextMax = minID - 1
	}
	return Page{Items: items, NextMaxID: nextMax}, nil
}

// authHeader builds an OAuth1 "Authorization" header value for a signed
// request, following RFC 5849 §3.4's HMAC-SHA1 signature base string
// construction.
func (t *TwitterSource) authHeader(method, baseURL string, query url.Values) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     t.creds.ConsumerKey,
		"oauth_nonce":            nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(time.Now().Unix(), 10),
		"oauth_token":            t.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	all := url.Values{}
	for k, v := range oauthParams {
		all.Set(k, v)
	}
	for k, vs := range query {
		for _, v := range vs {
			all.Add(k, v)
		}
	}

	baseString := method + "&" + url.QueryEscape(baseURL) + "&" + url.QueryEscape(encodeSorted(all))
	signingKey := url.QueryEscape(t.creds.ConsumerSecret) + "&" + url.QueryEscape(t.creds.AccessSecret)

	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	oauthParams["oauth_signature"] = signature

	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("OAuth ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteString(`="`)
		b.WriteString(url.QueryEscape(oauthParams[k]))
		b.WriteString(`"`)
	}
	return b.String()
}

func encodeSorted(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		for _, v := range values[k] {
			pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(pairs, "&")
}

func nonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
