package patient

import "time"

// Reconcile folds the obsolete patient's record into the survivor's,
// in place, ahead of the merge transaction persisting it. Rules:
// the obsolete note is prepended to the survivor's, blank survivor
// demographics adopt the obsolete values, and an explicit obsolete
// birth date always wins with the age recomputed from it.
func Reconcile(survivor, obsolete *PatientModel, now time.Time) {
	if obsolete.Note != "" {
		if survivor.Note != "" {
			survivor.Note = obsolete.Note + "\n\n" + survivor.Note
		} else {
			survivor.Note = obsolete.Note
		}
	}

	adoptIfBlank(&survivor.Address, obsolete.Address)
	adoptIfBlank(&survivor.City, obsolete.City)
	adoptIfBlank(&survivor.NextOfKin, obsolete.NextOfKin)
	adoptIfBlank(&survivor.Telephone, obsolete.Telephone)
	adoptIfBlank(&survivor.MotherName, obsolete.MotherName)
	adoptIfBlank(&survivor.Mother, obsolete.Mother)
	adoptIfBlank(&survivor.FatherName, obsolete.FatherName)
	adoptIfBlank(&survivor.Father, obsolete.Father)
	adoptIfBlank(&survivor.BloodType, obsolete.BloodType)
	adoptIfBlank(&survivor.HasInsurance, obsolete.HasInsurance)
	adoptIfBlank(&survivor.ParentTogether, obsolete.ParentTogether)

	if obsolete.BirthDate != nil {
		birthDate := *obsolete.BirthDate
		survivor.BirthDate = &birthDate
		survivor.Age = yearsBetween(birthDate, now)
	}
	if survivor.AgeType == "" {
		survivor.AgeType = obsolete.AgeType
	}
}

func adoptIfBlank(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

func yearsBetween(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
