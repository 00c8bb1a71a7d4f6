package opentdb

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func clientWith(fn roundTripperFunc) *Client {
	return NewClient(&http.Client{Transport: fn})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestFetchQuestionsBuildsRequest(t *testing.T) {
	var gotURL string
	client := clientWith(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{"response_code":0,"results":[
			{"type":"multiple","difficulty":"easy","category":"Science","question":"Q?","correct_answer":"A","incorrect_answers":["B","C","D"]}
		]}`), nil
	})

	questions, err := client.FetchQuestions(context.Background(), 5, "17", "easy")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "A" {
		t.Fatalf("unexpected questions: %+v", questions)
	}

	for _, want := range []string{"amount=5", "type=multiple", "category=17", "difficulty=easy"} {
		if !strings.Contains(gotURL, want) {
			t.Fatalf("expected %q in request url %q", want, gotURL)
		}
	}
}

func TestFetchQuestionsDefaultsAmount(t *testing.T) {
	var gotURL string
	client := clientWith(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{"response_code":0,"results":[]}`), nil
	})

	if _, err := client.FetchQuestions(context.Background(), 0, "", ""); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(gotURL, "amount=10") {
		t.Fatalf("expected default amount in %q", gotURL)
	}
	if strings.Contains(gotURL, "category=") || strings.Contains(gotURL, "difficulty=") {
		t.Fatalf("empty filters must be omitted: %q", gotURL)
	}
}

func TestFetchQuestionsAPIError(t *testing.T) {
	client := clientWith(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"response_code":1,"results":[]}`), nil
	})

	if _, err := client.FetchQuestions(context.Background(), 10, "", ""); err == nil {
		t.Fatalf("expected error for non-zero response_code")
	}
}

func TestFetchQuestionsHTTPError(t *testing.T) {
	client := clientWith(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `rate limited`), nil
	})

	if _, err := client.FetchQuestions(context.Background(), 10, "", ""); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestCategories(t *testing.T) {
	client := clientWith(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "api_category.php") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":17,"name":"Science & Nature"}]}`), nil
	})

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[1].ID != 17 {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}
