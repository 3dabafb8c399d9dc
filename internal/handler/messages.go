package handler

import (
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

// messages holds the reader-facing sentences of one language.
type messages struct {
	viewsNone        string
	viewsCount       string
	viewsRecorded    string
	viewsUnavailable string
	beaconQueued     string
	beaconDropped    string
	likesTotal       string
	likesTotalLiked  string
	likesLiked       string
	likesUnliked     string
	likesUnavailable string
}

var supported = []language.Tag{language.English, language.Chinese}

var catalogs = []messages{
	{
		viewsNone:        "This article has not been viewed yet",
		viewsCount:       "View count: %d",
		viewsRecorded:    "View count updated to %d",
		viewsUnavailable: "View count is temporarily unavailable",
		beaconQueued:     "View queued",
		beaconDropped:    "View not queued, try again later",
		likesTotal:       "Total likes: %d",
		likesTotalLiked:  "You like this article. Total likes: %d",
		likesLiked:       "Liked! Total likes: %d",
		likesUnliked:     "Like removed. Total likes: %d",
		likesUnavailable: "Likes are temporarily unavailable",
	},
	{
		viewsNone:        "这篇文章还没有被浏览过",
		viewsCount:       "这篇文章已被浏览 %d 次",
		viewsRecorded:    "浏览次数已更新为 %d",
		viewsUnavailable: "暂时无法获取浏览信息",
		beaconQueued:     "浏览已记录",
		beaconDropped:    "浏览暂未记录，请稍后重试",
		likesTotal:       "当前共 %d 人点赞",
		likesTotalLiked:  "你已点赞，当前共 %d 人点赞",
		likesLiked:       "点赞成功！当前共 %d 人点赞",
		likesUnliked:     "已取消点赞，当前共 %d 人点赞",
		likesUnavailable: "暂时无法获取点赞信息",
	},
}

var matcher = language.NewMatcher(supported)

// messagesFor picks the catalog matching the request's Accept-Language,
// English when nothing matches.
func messagesFor(r *http.Request) messages {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return catalogs[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return catalogs[0]
	}
	return catalogs[idx]
}

func (m messages) views(n int64) string {
	if n == 0 {
		return m.viewsNone
	}
	return fmt.Sprintf(m.viewsCount, n)
}
