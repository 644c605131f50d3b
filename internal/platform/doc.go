// Package platform detects the execution environment and reports its
// capabilities. Serverless platforms (Vercel, AWS Lambda) cannot run
// browser automation, have no durable storage, and bound scan duration;
// regular hosts have no such restrictions.
package platform
