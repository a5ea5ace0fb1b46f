package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/foodineye/pkg/validate"
)

type signupInput struct {
	ID     string `json:"id"     validate:"required,alpha_dash,min=3,max=20"`
	PW     string `json:"pw"     validate:"required,min=4"`
	Gender string `json:"gender" validate:"required,in=male|female"`
	Age    *int   `json:"age"    validate:"nullable,gte=0,lte=150"`
}

func intp(n int) *int { return &n }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{ID: "alice_01", PW: "secret", Gender: "female", Age: intp(30)})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})
	for _, f := range []string{"id", "pw", "gender"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected %s to be required", f)
		}
	}
	if _, ok := errs["age"]; ok {
		t.Error("nil age is nullable")
	}
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(signupInput{ID: "bob", PW: "secret", Gender: "robot"})
	if _, ok := errs["gender"]; !ok {
		t.Error("expected gender to be rejected")
	}
}

func TestPointerRange(t *testing.T) {
	errs := validate.Struct(signupInput{ID: "bob", PW: "secret", Gender: "male", Age: intp(-1)})
	if _, ok := errs["age"]; !ok {
		t.Error("expected negative age to be rejected")
	}
}

func TestObjectID(t *testing.T) {
	type in struct {
		ID string `json:"id" validate:"required,objectid"`
	}
	if errs := validate.Struct(in{ID: "64b0c0ffee0000000000cafe"}); validate.HasErrors(errs) {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := validate.Struct(in{ID: "not-an-id"}); !validate.HasErrors(errs) {
		t.Error("expected malformed id to fail")
	}
}

func TestDateRule(t *testing.T) {
	type in struct {
		Date string `json:"date" validate:"required,date"`
	}
	if errs := validate.Struct(in{Date: "2024-02-29"}); validate.HasErrors(errs) {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := validate.Struct(in{Date: "29/02/2024"}); !validate.HasErrors(errs) {
		t.Error("expected bad date to fail")
	}
}

func TestDive(t *testing.T) {
	type item struct {
		FoodID string `json:"f_id" validate:"required,objectid"`
		Count  int    `json:"count" validate:"required,gte=1"`
	}
	type in struct {
		Items []item `json:"items" validate:"required,min=1,dive"`
	}

	if errs := validate.Struct(in{}); errs["items"] == "" {
		t.Error("expected empty items to fail")
	}

	errs := validate.Struct(in{Items: []item{
		{FoodID: "64b0c0ffee0000000000cafe", Count: 1},
		{FoodID: "bad", Count: 2},
	}})
	if _, ok := errs["items.1.f_id"]; !ok {
		t.Errorf("expected nested error, got %v", errs)
	}
	if _, ok := errs["items.0.f_id"]; ok {
		t.Error("first item is valid")
	}
}

func TestRepeatedTypeReusesRules(t *testing.T) {
	for i := 0; i < 3; i++ {
		errs := validate.Struct(&signupInput{ID: "a", PW: "secret", Gender: "male"})
		if errs["id"] != "The id must be at least 3 characters." {
			t.Fatalf("run %d: unexpected id error %q", i, errs["id"])
		}
	}
}

func TestObjectIDHelper(t *testing.T) {
	if !validate.ObjectID("64B0C0FFEE0000000000CAFE") {
		t.Error("upper-case hex is a valid id")
	}
	if validate.ObjectID("64b0c0ffee0000000000caf") {
		t.Error("23 characters is not an id")
	}
}
