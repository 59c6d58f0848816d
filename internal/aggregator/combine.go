package aggregator

import (
	"strings"
	"time"

	"github.com/kurihiro0119/hamster-timesheets/internal/domain"
)

// CommentSeparator joins distinct comments of a merged record.
const CommentSeparator = "; "

// Combine folds a start-ordered group into one merged record.
// Gaps between records are not billed: End is moved forward by each later
// record's own elapsed minutes. Combine panics on an empty group.
func Combine(group []domain.RawRecord) domain.MergedRecord {
	first := group[0]
	acc := domain.MergedRecord{
		Start:    first.Start,
		End:      first.End,
		Customer: first.Customer,
		Activity: first.Activity,
		Comments: first.Comment,
		Tags:     copyTags(first.Tags),
	}
	for _, next := range group[1:] {
		acc = merge(acc, next)
	}
	return acc
}

func merge(acc domain.MergedRecord, next domain.RawRecord) domain.MergedRecord {
	acc.End = acc.End.Add(time.Duration(ToMinutes(next.Duration())) * time.Minute)
	acc.Comments = appendComment(acc.Comments, next.Comment)
	// Longer list wins, ties keep what we have.
	if len(next.Tags) > len(acc.Tags) {
		acc.Tags = copyTags(next.Tags)
	}
	return acc
}

// appendComment adds comment unless it already occurs, ignoring case,
// somewhere in comments.
func appendComment(comments, comment string) string {
	if strings.Contains(strings.ToLower(comments), strings.ToLower(comment)) {
		return comments
	}
	if comments == "" {
		return comment
	}
	return comments + CommentSeparator + comment
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
