// Package blitz is a client for the blitz.io load testing API.
//
// A Runner submits a job, authenticates lazily, polls the job status every
// two seconds and hands every shaped intermediate and final result to a
// callback:
//
//	client := blitz.NewClient("user@example.com", apiKey)
//	runner := blitz.NewRush(client)
//
//	err := runner.Execute(ctx, blitz.RushOptions{
//		URL: "http://example.com",
//		Pattern: &blitz.Pattern{Intervals: []blitz.Interval{
//			{Start: 1, End: 250, Duration: 60},
//		}},
//	}, func(result *blitz.Result) {
//		region, _ := result.RegionName()
//		fmt.Println(region, len(result.Timeline))
//	})
//
// Failures are reported as *ClientError, *ServerError or *ValidationError,
// all of which satisfy the Error interface.
package blitz
