package youtube

import (
	"context"
	"strings"

	"google.golang.org/api/youtube/v3"
)

type Metadata struct {
	Title    string
	Duration string
}

// DataAPI reads video metadata through the official Data API. This is
// separate from the caption pipeline and only available with an API key.
type DataAPI struct {
	client *youtube.Service
}

func NewDataAPI(client *youtube.Service) *DataAPI {
	return &DataAPI{client: client}
}

func (y *DataAPI) FetchMetadata(ctx context.Context, ids []string) (map[string]Metadata, error) {
	call := y.client.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return map[string]Metadata{}, err
	}

	mds := make(map[string]Metadata, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		md := Metadata{Title: item.Snippet.Title}
		if item.ContentDetails != nil {
			md.Duration = item.ContentDetails.Duration
		}
		mds[item.Id] = md
	}

	return mds, nil
}
