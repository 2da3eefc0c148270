// Package seed holds the starter roster written on first use of an empty store.
package seed

import "github.com/noah-isme/student-roster/internal/models"

// Provider returns the initial collection. Each call must return a fresh copy.
type Provider func() []models.Student

// Students returns the built-in starter roster.
func Students() []models.Student {
	return []models.Student{
		{
			ID:             "1",
			Name:           "Ethan Carter",
			Phone:          "+1 202 555 0141",
			Email:          "ethan.carter@example.com",
			DOB:            "Mar 3, 2012",
			Class:          "5th",
			ProfileImage:   models.StringScalar("stud1.png"),
			Age:            models.NumberScalar(12),
			YearsInSchool:  models.StringScalar("3 years"),
			RegistrationNo: "REG-2021-001",
			Guardian: &models.Guardian{
				Name:  "Laura Carter",
				Phone: "+1 202 555 0142",
				Email: "laura.carter@example.com",
			},
			FamilyMembers: []models.FamilyMember{
				{FirstName: "Noah", LastName: "Carter", Phone: "+1 202 555 0143", Email: "noah.carter@example.com"},
			},
		},
		{
			ID:             "2",
			Name:           "Olivia Bennett",
			Phone:          "+1 202 555 0177",
			Email:          "olivia.bennett@example.com",
			DOB:            "Jul 19, 2011",
			Class:          "6th",
			ProfileImage:   models.StringScalar("stud2.png"),
			Age:            models.NumberScalar(13),
			YearsInSchool:  models.StringScalar("4 years"),
			RegistrationNo: "REG-2020-014",
			Guardian: &models.Guardian{
				Name:  "Mark Bennett",
				Phone: "+1 202 555 0178",
				Email: "mark.bennett@example.com",
			},
		},
		{
			ID:             "3",
			Name:           "Aarav Sharma",
			Phone:          "+1 202 555 0110",
			Email:          "aarav.sharma@example.com",
			DOB:            "Nov 2, 2012",
			Class:          "5th",
			ProfileImage:   models.StringScalar("stud3.png"),
			Age:            models.NumberScalar(11),
			YearsInSchool:  models.StringScalar("2 years"),
			RegistrationNo: "REG-2022-007",
			Guardian: &models.Guardian{
				Name:  "Priya Sharma",
				Phone: "+1 202 555 0111",
				Email: "priya.sharma@example.com",
			},
			FamilyMembers: []models.FamilyMember{
				{FirstName: "Rohan", LastName: "Sharma", Phone: "+1 202 555 0112", Email: "rohan.sharma@example.com"},
				{FirstName: "Isha", LastName: "Sharma", Phone: "+1 202 555 0113", Email: "isha.sharma@example.com"},
			},
		},
		{
			ID:            "4",
			Name:          "Sofia Moreno",
			Phone:         "+1 202 555 0190",
			Email:         "sofia.moreno@example.com",
			DOB:           "Feb 27, 2013",
			Class:         "4th",
			ProfileImage:  models.StringScalar("stud4.png"),
			Age:           models.NumberScalar(10),
			YearsInSchool: models.StringScalar("1 year"),
		},
		{
			ID:             "5",
			Name:           "Liam O'Connor",
			Phone:          "+1 202 555 0165",
			Email:          "liam.oconnor@example.com",
			DOB:            "Sep 8, 2011",
			Class:          "6th",
			ProfileImage:   models.StringScalar("stud5.png"),
			Age:            models.NumberScalar(13),
			YearsInSchool:  models.StringScalar("5 years"),
			RegistrationNo: "REG-2019-031",
			Guardian: &models.Guardian{
				Name:  "Aoife O'Connor",
				Phone: "+1 202 555 0166",
				Email: "aoife.oconnor@example.com",
			},
		},
	}
}
