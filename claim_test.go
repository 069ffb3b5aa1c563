package main

import "testing"

func TestClaimifyRulePrecedence(t *testing.T) {
	cases := []struct {
		question, answer, want string
	}{
		{"Who wrote Pride and Prejudice?", "Jane Austen", "Jane Austen wrote the work."},
		// "who wrote" must win over the generic "who " rule.
		{"who wrote it", "X", "X wrote the work."},
		{"Who discovered penicillin?", "Alexander Fleming", "Alexander Fleming is the person in question."},
		{"In what year did it sink?", "1912", "It happened in 1912."},
		{"When was Cornell University founded?", "1865", "It happened in 1865."},
		{"Where was the treaty signed?", "Paris", "It happened in Paris."},
		{"What is the capital of Australia?", "Canberra", "It is Canberra."},
		{"What was the first satellite?", "Sputnik", "It is Sputnik."},
		{"Which planet is largest?", "Jupiter", "It is Jupiter."},
		{"Explain the theory.", "Relativity", "Answer: Relativity"},
		// Empty answers short-circuit everything.
		{"Who wrote it?", "", "The answer is unknown."},
		{"", "42", "Answer: 42"},
		// Matching is case-insensitive on the question only.
		{"WHO WROTE THE ILIAD?", "Homer", "Homer wrote the work."},
		// "what year" matches anywhere in the question.
		{"Do you know what year it happened?", "1969", "It happened in 1969."},
	}
	for _, c := range cases {
		if got := Claimify(c.question, c.answer); got != c.want {
			t.Fatalf("Claimify(%q, %q) = %q, want %q", c.question, c.answer, got, c.want)
		}
	}
}

func TestClaimifyTrimsAnswer(t *testing.T) {
	if got := Claimify("Which ocean is deepest?", "  the Pacific  "); got != "It is the Pacific." {
		t.Fatalf("expected trimmed answer in claim, got %q", got)
	}
}
