package models

import "time"

// JobListing is the canonical job posting shape. Only URL is guaranteed.
type JobListing struct {
	Title              string   `json:"title,omitempty"`
	Company            string   `json:"company,omitempty"`
	Location           string   `json:"location,omitempty"`
	URL                string   `json:"url"`
	TechStack          []string `json:"tech_stack,omitempty"`
	PostedDate         string   `json:"posted_date,omitempty"`
	SalaryRange        string   `json:"salary_range,omitempty"`
	DescriptionSnippet string   `json:"description_snippet,omitempty"`
}

// SearchCriteria describes what the job search looks for
type SearchCriteria struct {
	TechStack       []string `json:"tech_stack" yaml:"tech_stack"`
	Location        string   `json:"location" yaml:"location"`
	ExperienceLevel string   `json:"experience_level" yaml:"experience_level"`
	Role            string   `json:"role,omitempty" yaml:"role"`
}

// JobSearchResult is the output of one job-search run
type JobSearchResult struct {
	ID             string         `json:"id" badgerhold:"key"`
	SearchCriteria SearchCriteria `json:"search_criteria"`
	TotalJobsFound int            `json:"total_jobs_found"`
	JobListings    []JobListing   `json:"job_listings"`
	SearchDate     time.Time      `json:"search_date"`
	Stages         []string       `json:"stages"`
}

// SavedJob is a job the user chose to keep
type SavedJob struct {
	ID                  string     `json:"id" badgerhold:"key"`
	Title               string     `json:"title" validate:"required,max=300"`
	Location            string     `json:"location" validate:"max=200"`
	Description         string     `json:"description"`
	JobURL              string     `json:"job_url" validate:"required,url"`
	InterviewURL        string     `json:"interview_url,omitempty" validate:"omitempty,url"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}
