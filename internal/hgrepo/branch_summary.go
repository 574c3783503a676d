package hgrepo

import (
	"context"
	"sort"
)

// BranchCount reports how many repositories of a selection carry a named branch.
type BranchCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// BranchSummary aggregates hg branches over the provided repositories, ordered by
// descending count and then by name. Repositories whose branch listing fails are skipped.
func (client *Client) BranchSummary(executionContext context.Context, repositoryPaths []string) []BranchCount {
	countsByName := make(map[string]int)
	for _, repositoryPath := range repositoryPaths {
		branchNames, listError := client.ListBranches(executionContext, repositoryPath)
		if listError != nil {
			continue
		}
		seenInRepository := make(map[string]struct{}, len(branchNames))
		for _, branchName := range branchNames {
			if _, alreadyCounted := seenInRepository[branchName]; alreadyCounted {
				continue
			}
			seenInRepository[branchName] = struct{}{}
			countsByName[branchName]++
		}
	}

	summary := make([]BranchCount, 0, len(countsByName))
	for branchName, count := range countsByName {
		summary = append(summary, BranchCount{Name: branchName, Count: count})
	}
	sort.Slice(summary, func(leftIndex int, rightIndex int) bool {
		if summary[leftIndex].Count != summary[rightIndex].Count {
			return summary[leftIndex].Count > summary[rightIndex].Count
		}
		return summary[leftIndex].Name < summary[rightIndex].Name
	})
	return summary
}
