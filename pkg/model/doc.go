// Package model defines the registration draft consumed by the wizard
// components. Roles and steps are closed enumerations: a Role is either unset,
// student or teacher and a Step is one of the three wizard pages. Field keys
// name every value the wizard collects so visibility, validation and error
// mapping can refer to the same identifiers renderers use. Multi-value fields
// (interests and subjects) have set semantics; attachments are an ordered list
// identified only by position.
package model
